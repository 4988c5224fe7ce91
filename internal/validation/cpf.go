package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCPF is wrapped by every CPF rejection; callers branch on this,
// the wrapped message is display-only.
var ErrInvalidCPF = errors.New("invalid cpf")

// NormalizeCPF strips the conventional formatting (grouping dots and the
// hyphen) and surrounding whitespace.
func NormalizeCPF(cpf string) string {
	cpf = strings.TrimSpace(cpf)
	cpf = strings.ReplaceAll(cpf, ".", "")
	return strings.ReplaceAll(cpf, "-", "")
}

// ValidateCPF reports whether the value is a well-formed, checksum-valid CPF.
// Pure function, no side effects.
func ValidateCPF(cpf string) error {
	cpf = NormalizeCPF(cpf)

	if len(cpf) != 11 {
		return fmt.Errorf("%w: must have 11 digits", ErrInvalidCPF)
	}
	for i := 0; i < len(cpf); i++ {
		if cpf[i] < '0' || cpf[i] > '9' {
			return fmt.Errorf("%w: must contain only digits", ErrInvalidCPF)
		}
	}
	if strings.Count(cpf, cpf[:1]) == 11 {
		return fmt.Errorf("%w: all digits are identical", ErrInvalidCPF)
	}
	if !checkDigitsValid(cpf) {
		return fmt.Errorf("%w: check digits do not match", ErrInvalidCPF)
	}
	return nil
}

func checkDigitsValid(cpf string) bool {
	first := checkDigit(cpf[:9], 10)
	second := checkDigit(cpf[:9]+string(rune('0'+first)), 11)
	return int(cpf[9]-'0') == first && int(cpf[10]-'0') == second
}

// checkDigit computes a weighted mod-11 check digit; digit i is multiplied by
// startWeight-i, weights counting down to 2.
func checkDigit(digits string, startWeight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
