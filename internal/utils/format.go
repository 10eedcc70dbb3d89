package utils

import (
	"fmt"
	"strings"
)

// sizeUnitStep is the divisor between adjacent size units.
const sizeUnitStep = 1024

// sizeUnitSuffixes lists the supported size suffixes from bytes upward.
var sizeUnitSuffixes = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count as a compact lower-case size string.
// Scaled values below ten keep a single decimal place, with a trailing ".0"
// stripped. Negative counts collapse to "0b".
func FormatFileSize(byteCount int64) string {
	if byteCount <= 0 {
		return "0" + sizeUnitSuffixes[0]
	}
	scaledValue := float64(byteCount)
	suffixIndex := 0
	for scaledValue >= sizeUnitStep && suffixIndex < len(sizeUnitSuffixes)-1 {
		scaledValue /= sizeUnitStep
		suffixIndex++
	}
	if suffixIndex == 0 {
		return fmt.Sprintf("%d%s", byteCount, sizeUnitSuffixes[0])
	}
	if scaledValue < 10 {
		rendered := strings.TrimSuffix(fmt.Sprintf("%.1f", scaledValue), ".0")
		return rendered + sizeUnitSuffixes[suffixIndex]
	}
	return fmt.Sprintf("%.0f%s", scaledValue, sizeUnitSuffixes[suffixIndex])
}
