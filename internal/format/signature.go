package format

import (
	"bytes"
	"fmt"
)

// CheckSignature compares b against want and reports ErrSignatureMismatch
// when they differ. which names the signature in the error.
func CheckSignature(b, want []byte, which string) error {
	if len(b) < len(want) {
		return fmt.Errorf("%s signature: %w", which, ErrTruncated)
	}
	if !bytes.Equal(b[:len(want)], want) {
		return fmt.Errorf("%s signature %q: %w", which, b[:len(want)], ErrSignatureMismatch)
	}
	return nil
}
