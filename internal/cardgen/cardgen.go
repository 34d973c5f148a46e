// Package cardgen generates card numbers. Numbers are plain numeric strings;
// no checksum digit is applied.
package cardgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// NumberLen is the fixed card number length.
const NumberLen = 16

// IsDigits reports whether s is non-empty and all ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidatePrefix checks an issuer prefix: 6, 8 or 9 digits.
func ValidatePrefix(prefix string) error {
	if !IsDigits(prefix) {
		return fmt.Errorf("prefix must be numeric")
	}
	switch len(prefix) {
	case 6, 8, 9:
		return nil
	}
	return fmt.Errorf("prefix length must be 6, 8 or 9")
}

// Generate returns a NumberLen-digit card number starting with prefix.
func Generate(prefix string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	fill := NumberLen - len(prefix)
	tail, err := randomDigits(fill)
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return prefix + tail, nil
}

// GenerateUnique generates a number and retries while exists reports a hit,
// up to maxAttempts.
func GenerateUnique(prefix string, maxAttempts int, exists func(number string) (bool, error)) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		number, err := Generate(prefix)
		if err != nil {
			return "", err
		}
		taken, err := exists(number)
		if err != nil {
			return "", fmt.Errorf("uniqueness check: %w", err)
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not generate unique card number after %d attempts", maxAttempts)
}

// randomDigits produces count digits using rejection sampling so the 0-9
// distribution stays unbiased. Only bytes < 250 are accepted before mod 10.
func randomDigits(count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 64)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			if buf[i] < threshold {
				sb.WriteByte('0' + buf[i]%10)
			}
		}
	}
	return sb.String(), nil
}
