// Package validation registers the receipt-specific binding tags on gin's
// validator and turns validation failures into field errors.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
)

var (
	empCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{2,20}$`)
	registerOnce   sync.Once
	registerErr    error
)

// Register adds the category, empcode and isodate tags. Safe to call more
// than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return jsonName(fld.Tag.Get("json"), fld.Tag.Get("form"), fld.Name)
		})
		for tag, fn := range map[string]validator.Func{
			"category": validCategory,
			"empcode":  validEmpCode,
			"isodate":  validISODate,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func validCategory(fl validator.FieldLevel) bool {
	_, err := receipt.ParseCategory(fl.Field().String())
	return err == nil
}

func validEmpCode(fl validator.FieldLevel) bool {
	return empCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(receipt.DateLayout, fl.Field().String())
	return err == nil
}

func jsonName(jsonTag, formTag, fallback string) string {
	for _, tag := range []string{jsonTag, formTag} {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fallback
}

// FieldErrors converts a binding error into an app error. Errors that are
// not validation failures become a plain bad request.
func FieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError("Invalid request body")
	}
	out := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return apperror.NewValidationError(out)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "must match " + fe.Param()
	case "category":
		return "must be one of MF, FD, BOND, NCD, IPO, INS"
	case "empcode":
		return "must be 2-20 letters or digits"
	case "isodate":
		return "must be a date in YYYY-MM-DD form"
	default:
		return "is invalid"
	}
}
