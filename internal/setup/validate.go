package setup

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator for form DTOs. Struct tags cover the
// generic rules (required, email); rules with spec'd human messages are
// checked by hand where they apply.
var validate = validator.New(validator.WithRequiredStructEnabled())

// codePattern is the allowed shape for class and section codes, matched
// case-insensitively.
var codePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// validCode reports whether a code is acceptable. Empty codes are allowed;
// the field is optional everywhere it appears.
func validCode(code string) bool {
	if code == "" {
		return true
	}
	return codePattern.MatchString(strings.ToLower(code))
}

// fieldErrors converts validator output into the engine's field-error
// taxonomy with readable messages.
func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fieldErr(field, fe.Field()+" is required.")
	case "email":
		return fieldErr(field, "Enter a valid email address.")
	default:
		return fieldErr(field, fe.Field()+" is invalid.")
	}
}

// maxIDSuffix returns the largest numeric suffix across ids of the form
// "<prefix>-<n>". Seeding optimistic counters from it means re-loaded
// collections never collide with previously allocated ids.
func maxIDSuffix(prefix string, ids []string) int {
	max := 0
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
