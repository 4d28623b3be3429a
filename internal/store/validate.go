package store

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"leadconsole/internal/model"
	"leadconsole/internal/statusutil"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is the lenient "something@something.tld" check used by lead edits.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the record tags registered
// (leademail, leadstatus, stage).
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("leademail", func(fl validator.FieldLevel) bool {
			return ValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("leadstatus", func(fl validator.FieldLevel) bool {
			return statusutil.ValidLeadStatus(model.LeadStatus(fl.Field().String()))
		})
		_ = v.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
			return statusutil.ValidStage(model.Stage(fl.Field().String()))
		})
		validate = v
	})
	return validate
}

// RecordError describes the first invalid field of a record.
type RecordError struct {
	Field   string
	Message string
}

func (e RecordError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidateRecord checks a Lead or Opportunity against its invariants.
func ValidateRecord(rec any) error {
	err := Validator().Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return RecordError{Field: fe.Field(), Message: messageForTag(fe)}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "leademail":
		return "Please enter a valid email address."
	case "leadstatus":
		return fmt.Sprintf("invalid status %q", fe.Value())
	case "stage":
		return fmt.Sprintf("invalid stage %q", fe.Value())
	case "gte":
		return "must not be negative"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
