package authflow

import (
	"crypto/rand"
	"math/big"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
)

// Entry codes are six digit decimal numbers, uniform over 100000-999999.
// The range itself guarantees six digits, so no padding is needed.
const (
	entryCodeMin  = 100000
	entryCodeSpan = 900000
)

// CodeSource produces entry codes. The default uses crypto/rand; tests
// inject a deterministic source through WithCodeSource.
type CodeSource func() (string, error)

// GenerateEntryCode returns a uniformly random six digit entry code.
func GenerateEntryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(entryCodeSpan))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate entry code")
	}

	return strconv.FormatInt(entryCodeMin+n.Int64(), 10), nil
}
