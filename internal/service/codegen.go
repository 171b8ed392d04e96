package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ===========================================
// Short Code Generation
// ===========================================
// Codes are base62 (0-9, A-Z, a-z): URL-safe and case-sensitive.
// 62^6 is about 56.8 billion codes at the default length.

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CodeGenerator returns a random short code of the given length.
type CodeGenerator func(length int) (string, error)

// GenerateCode draws each character uniformly with crypto/rand.
func GenerateCode(length int) (string, error) {
	max := big.NewInt(int64(len(base62Chars)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = base62Chars[n.Int64()]
	}
	return string(code), nil
}
