package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	validate.RegisterTagNameFunc(jsonTagName)
	if err := validate.RegisterValidation("username", usernameTag); err != nil {
		panic(err)
	}
}

// RegisterGin installs the json field names and the username tag on gin's
// binding engine so binding errors use the same keys as the pipelines.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(jsonTagName)
	return v.RegisterValidation("username", usernameTag)
}

// FromBindingError converts an error from c.ShouldBindJSON into field errors.
func FromBindingError(err error) Errors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		errs := Errors{}
		for _, fe := range verrs {
			errs.Add(fe.Field(), bindingMessage(fe))
		}
		return errs
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Errors{typeErr.Field: {fmt.Sprintf("Expected a value of type %s.", typeErr.Type)}}
	}

	return Errors{"non_field_errors": {"Invalid request body."}}
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "username":
		return Username("")
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func usernameTag(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
