package common

import (
	"crypto/rand"
	"io"
	"math/big"
)

// RandomDigits returns a string of n decimal digits drawn from r.
// A nil reader falls back to crypto/rand.
func RandomDigits(r io.Reader, n int) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	ten := big.NewInt(10)
	out := make([]byte, n)
	for i := range out {
		d, err := rand.Int(r, ten)
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + d.Int64())
	}
	return string(out), nil
}
