// Package validation holds the per-field rules and the per-entity pipelines that
// run them. Rules that need the database (uniqueness, existence) live in the
// service layer and add to the same Errors value.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name to its messages. It is rendered as the 400 response body.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return strings.Join(parts, ", ")
}

// Err returns nil when no field failed, so callers can `return errs.Err()`.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsErrors extracts field errors from err.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// Single is a shorthand for a one-field error.
func Single(field, msg string) error {
	return Errors{field: {msg}}
}

// Rule checks a value and returns a message when it is invalid.
type Rule[T any] func(T) string

// Field runs rules in order and records the first failure under name.
func Field[T any](errs Errors, name string, value T, rules ...Rule[T]) bool {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			errs.Add(name, msg)
			return false
		}
	}
	return true
}

var (
	validate        = validator.New(validator.WithRequiredStructEnabled())
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

func Required(v string) string {
	if strings.TrimSpace(v) == "" {
		return "This field may not be blank."
	}
	return ""
}

func MaxLen(n int) Rule[string] {
	return func(v string) string {
		if utf8.RuneCountInString(v) > n {
			return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
		}
		return ""
	}
}

func Email(v string) string {
	if err := validate.Var(v, "email"); err != nil {
		return "Enter a valid email address."
	}
	return ""
}

func Username(v string) string {
	if err := validate.Var(v, "username"); err != nil {
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return ""
}

func Between(min, max int) Rule[int] {
	return func(v int) string {
		if v < min || v > max {
			return fmt.Sprintf("Ensure this value is between %d and %d.", min, max)
		}
		return ""
	}
}
