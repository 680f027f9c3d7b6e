package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const (
	userCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	userCodeLen   = 8
	shareURLChars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shareURLLen   = 16
)

func randString(chars string, n int) string {
	max := big.NewInt(int64(len(chars)))
	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		code[i] = chars[idx.Int64()]
	}
	return string(code)
}

// GenUserCode generates a public friend code.
func GenUserCode() string {
	return randString(userCodeChars, userCodeLen)
}

// GenShareURL generates the random path segment of a private link.
func GenShareURL() string {
	return randString(shareURLChars, shareURLLen)
}

// GenShareToken returns 32 random bytes encoded as base64url.
func GenShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
