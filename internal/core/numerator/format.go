package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// PadWidth is the minimum width of the sequential part of a document number.
const PadWidth = 5

// Format renders the external document number:
// origin country + complementary code + zero-padded sequence.
//
//	Format("BR", "6023", 42) == "BR602300042"
func Format(origin, complementary string, seq int64) string {
	return fmt.Sprintf("%s%s%0*d", origin, complementary, PadWidth, seq)
}

// ParseSequence extracts the sequential value from a number produced by Format
// with the same origin and complementary code.
// Returns -1 if parsing fails.
func ParseSequence(number, origin, complementary string) int64 {
	prefix := origin + complementary
	if !strings.HasPrefix(number, prefix) {
		return -1
	}
	suffix := number[len(prefix):]
	if len(suffix) < PadWidth {
		return -1
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
