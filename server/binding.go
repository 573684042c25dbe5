package server

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/scribe/errors"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Use json tag names for field names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindError maps a request binding failure onto the validation taxonomy: an
// absent required field gets its own code, everything else is invalid input.
func bindError(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return errors.MissingField(fe.Field())
		}
		return errors.InvalidInput(fe.Field(), fe.Field()+" "+formatFieldError(fe))
	}
	return errors.InvalidInput("", err.Error())
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "is invalid"
	}
}
