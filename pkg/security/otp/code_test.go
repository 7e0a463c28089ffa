package otp

import (
	"regexp"
	"testing"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	digits := regexp.MustCompile(`^\d{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateCode(DefaultCodeConfig())
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerateCode_EightDigits(t *testing.T) {
	cfg := DefaultCodeConfig()
	cfg.Digits = otp.DigitsEight

	code, err := GenerateCode(cfg)
	require.NoError(t, err)
	assert.Len(t, code, 8)
}

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret(20)
	require.NoError(t, err)
	assert.NotContains(t, secret, "=")
	assert.Len(t, secret, 32)
}
