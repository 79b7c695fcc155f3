// Package inputval validates request parameters before handlers touch the
// services. Struct fields carry `validate` rules and a human `label`.
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Return pages a forum action may redirect to.
const (
	ReturnIndex = "index.php"
	ReturnView  = "view.php"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("returnpage", func(fl validator.FieldLevel) bool {
			return IsValidReturnPage(fl.Field().String())
		})
	})
	return v
}

// Validate runs the struct's rules. A non-struct input is a programming
// error and is reported as a single failure.
func Validate(s any) *Result {
	res := &Result{}
	err := get().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "objectid":
		return label + " is not a valid id."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "returnpage":
		return label + " must be index.php or view.php."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}

// IsValidObjectID reports whether s (trimmed) is a 24-character hex id.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// ParseObjectID parses a trimmed hex id.
func ParseObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(s))
}

// ParseOptionalObjectID returns nil for an empty value.
func ParseOptionalObjectID(s string) (*primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// IsValidReturnPage accepts the two forum return pages; empty is allowed
// and means the course index.
func IsValidReturnPage(s string) bool {
	switch strings.TrimSpace(s) {
	case "", ReturnIndex, ReturnView:
		return true
	}
	return false
}

// ReturnPage normalizes a validated return page, defaulting to the index.
func ReturnPage(s string) string {
	if strings.TrimSpace(s) == ReturnView {
		return ReturnView
	}
	return ReturnIndex
}

// IsTruthy treats "1", "true", "on" and "yes" as set, the way HTML forms and
// legacy links send flags.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
