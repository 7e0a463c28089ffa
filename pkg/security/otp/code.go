// Package otp issues the numeric one-time codes mailed during registration.
package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// CodeConfig controls code generation.
type CodeConfig struct {
	SecretSize int
	Digits     otp.Digits
	Algorithm  otp.Algorithm
}

// DefaultCodeConfig returns six-digit SHA1 codes.
func DefaultCodeConfig() CodeConfig {
	return CodeConfig{
		SecretSize: 20,
		Digits:     otp.DigitsSix,
		Algorithm:  otp.AlgorithmSHA1,
	}
}

// GenerateSecret generates a random base32 secret without padding.
func GenerateSecret(size int) (string, error) {
	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return strings.TrimRight(base32.StdEncoding.EncodeToString(secret), "="), nil
}

// GenerateCode derives a single-use code from a throwaway HOTP secret and a
// random counter. Nothing about the secret is stored; only the code's hash is.
func GenerateCode(cfg CodeConfig) (string, error) {
	secret, err := GenerateSecret(cfg.SecretSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	var counter [8]byte
	if _, err := rand.Read(counter[:]); err != nil {
		return "", fmt.Errorf("failed to generate counter: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(secret, binary.BigEndian.Uint64(counter[:]), hotp.ValidateOpts{
		Digits:    cfg.Digits,
		Algorithm: cfg.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return code, nil
}
