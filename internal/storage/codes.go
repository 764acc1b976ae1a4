package storage

import (
	"context"
	"crypto/rand"
	"fmt"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength is the fixed length of ticket codes. 36^6 codes make a
	// per-draw collision astronomically unlikely at any realistic volume.
	CodeLength = 6
)

// GenerateCode produces one random candidate ticket code. Uniqueness is
// the caller's concern; see AllocateCode.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	for i, b := range buf {
		// 252 is the largest multiple of 36 below 256; resample the rare
		// bytes above it to keep the alphabet distribution uniform.
		for b >= 252 {
			one := make([]byte, 1)
			if _, err := rand.Read(one); err != nil {
				return "", fmt.Errorf("generate ticket code: %w", err)
			}
			b = one[0]
		}
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// AllocateCode draws candidate codes until one not present in the store is
// found. The loop terminates probabilistically rather than by a hard cap;
// with a 36^6 space a second iteration is already exceptional.
func (s *TicketStore) AllocateCode(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		taken, err := s.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}
