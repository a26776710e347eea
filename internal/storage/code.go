package storage

import (
	"context"
	"fmt"
	"math/rand/v2"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	codeLength   = 8
	codeAttempts = 16
)

// NewEventCode returns a random 8-character event code drawn from [0-9A-Za-z].
func NewEventCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// UniqueEventCode draws codes until taken reports one as free.
func UniqueEventCode(ctx context.Context, taken func(ctx context.Context, code string) (bool, error)) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := NewEventCode()
		exists, err := taken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check event code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to find a free event code after %d attempts", codeAttempts)
}
