//go:build !race

package authflow

func passwordHashCost() int {
	return 14
}
