package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"

	nameChars = lowercaseChars + numberChars

	MinSuffixLength = 4
	MaxSuffixLength = 64
)

var (
	ErrSuffixTooShort = errors.New("suffix length must be at least 4")
	ErrSuffixTooLong  = errors.New("suffix length must be at most 64")
)

// RandomSuffix returns a cryptographically random string of lowercase letters
// and digits, safe to embed in file names and URLs.
func RandomSuffix(length int) (string, error) {
	if length < MinSuffixLength {
		return "", ErrSuffixTooShort
	}
	if length > MaxSuffixLength {
		return "", ErrSuffixTooLong
	}

	result := make([]byte, length)
	for i := range result {
		ch, err := randChar(nameChars)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	return string(result), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
