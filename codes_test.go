package authflow_test

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authflow "github.com/safehaven-app/go-authflow"
)

func TestGenerateEntryCode(t *testing.T) {
	sixDigit := regexp.MustCompile(`^[1-9]\d{5}$`)

	for i := 0; i < 500; i++ {
		code, err := authflow.GenerateEntryCode()
		require.NoError(t, err)
		require.True(t, sixDigit.MatchString(code), code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
