// package validation wraps go-playground/validator with the custom rules used
// by request bodies and configuration.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	handoffKeyRe = regexp.MustCompile(`^[A-Za-z0-9_:./-]+$`)
	// git check-ref-format, reduced to what adapters actually send.
	branchNameRe = regexp.MustCompile(`^[A-Za-z0-9_./-]+$`)
)

func init() {
	rules := map[string]validator.Func{
		"handoff_key": func(fl validator.FieldLevel) bool {
			if fl.Field().String() == "" {
				return true
			}

			return handoffKeyRe.MatchString(fl.Field().String())
		},
		"branch_name": func(fl validator.FieldLevel) bool {
			name := fl.Field().String()
			if name == "" {
				return true
			}

			return branchNameRe.MatchString(name) &&
				!strings.Contains(name, "..") &&
				!strings.HasPrefix(name, "/") &&
				!strings.HasSuffix(name, "/")
		},
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register custom validation %q: %v", tag, err))
		}
	}
}

// ValidationError holds one message per failed field.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct runs tag validation on s and returns a *ValidationError
// with readable messages when it fails.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string

	for _, fe := range fieldErrs {
		var message string

		switch fe.Tag() {
		case "handoff_key":
			message = fmt.Sprintf(
				"field '%s' must contain only letters, numbers and the characters _ : . / -",
				fe.Field(),
			)
		case "branch_name":
			message = fmt.Sprintf("field '%s' is not a valid branch name", fe.Field())
		default:
			message = fmt.Sprintf(
				"field '%s' failed on the '%s' tag",
				fe.Field(),
				fe.Tag(),
			)
		}

		messages = append(messages, message)
	}

	return &ValidationError{Errors: messages}
}
