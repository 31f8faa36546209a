// Package address normalizes caller identities. Identities are EVM style
// 20-byte hex addresses rendered in EIP-55 checksum form.
package address

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalid = errors.New("address: not a 20-byte hex address")

// Normalize returns the checksummed form of s. The zero address is rejected.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", ErrInvalid
	}
	a := common.HexToAddress(s)
	if a == (common.Address{}) {
		return "", ErrInvalid
	}
	return a.Hex(), nil
}

func Valid(s string) bool {
	_, err := Normalize(s)
	return err == nil
}

// Equal compares two identities case-insensitively.
func Equal(a, b string) bool {
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	return errA == nil && errB == nil && na == nb
}
