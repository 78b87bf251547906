package repository

import (
	"crypto/rand"
	"fmt"
)

// linkAlphabet is the URL-safe alphabet; its 64 symbols map exactly onto 6 bits.
const (
	linkAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	linkLength   = 10
)

// newLinkToken returns a random 10-character URL-safe token.
func newLinkToken() (string, error) {
	buf := make([]byte, linkLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = linkAlphabet[b&63]
	}
	return string(buf), nil
}
