package labels

import (
	"fmt"
	"regexp"
	"strconv"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
)

// NumberWidth is the zero-padded width of a label number base.
const NumberWidth = 5

var manualNumberPattern = regexp.MustCompile(`^([0-9]+)(?:/([0-9]+))?$`)

// FormatNumber renders an auto-generated sequential label number.
func FormatNumber(n int) string {
	return fmt.Sprintf("%0*d", NumberWidth, n)
}

// CanonicalNumber validates a manually supplied label number and returns its
// canonical form: base zero-padded to five digits, suffix unpadded
// ("7" -> "00007", "7/02" -> "00007/2").
func CanonicalNumber(raw string) (string, error) {
	match := manualNumberPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", custom_error.NewValidationError("number", fmt.Sprintf("malformed label number %q", raw))
	}

	base, err := strconv.Atoi(match[1])
	if err != nil || base <= 0 {
		return "", custom_error.NewValidationError("number", fmt.Sprintf("label number base must be a positive integer, got %q", match[1]))
	}

	if match[2] == "" {
		return FormatNumber(base), nil
	}

	suffix, err := strconv.Atoi(match[2])
	if err != nil || suffix <= 0 {
		return "", custom_error.NewValidationError("number", fmt.Sprintf("label number suffix must be a positive integer, got %q", match[2]))
	}

	return fmt.Sprintf("%s/%d", FormatNumber(base), suffix), nil
}
