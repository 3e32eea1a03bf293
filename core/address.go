package core

import (
	"fmt"
	"strings"
)

// NormalizeAddress validates an Ethereum address string and returns its
// canonical lowercase form. Every component normalizes addresses through
// here before using them as lookup keys, so comparison is always
// case-insensitive.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)

	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	for _, c := range address[2:] {
		if !isHexDigit(c) {
			return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
		}
	}

	return strings.ToLower(address), nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
