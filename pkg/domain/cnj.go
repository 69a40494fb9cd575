package domain

import (
	"fmt"
	"regexp"
)

var cnjDigits = regexp.MustCompile(`^\d{20}$`)

// NormalizeCNJ strips any punctuation from a CNJ case number and validates
// it is exactly 20 digits, the precondition for CanonicalCNJ.
func NormalizeCNJ(raw string) (string, error) {
	digits := regexp.MustCompile(`\D`).ReplaceAllString(raw, "")
	if !cnjDigits.MatchString(digits) {
		return "", fmt.Errorf("cnj number must be exactly 20 digits, got %d", len(digits))
	}
	return digits, nil
}

// CanonicalCNJ renders 20 raw digits as NNNNNNN-DD.AAAA.J.TR.OOOO.
func CanonicalCNJ(digits string) (string, error) {
	if !cnjDigits.MatchString(digits) {
		return "", fmt.Errorf("cnj number must be exactly 20 digits, got %d", len(digits))
	}
	return fmt.Sprintf("%s-%s.%s.%s.%s.%s",
		digits[0:7], digits[7:9], digits[9:13], digits[13:14], digits[14:16], digits[16:20]), nil
}
