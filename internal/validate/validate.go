// Package validate holds the advisory, client-side checks of the create/edit forms.
// The backend stays the authority: when it rejects a submission its message is shown as-is.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"issueboard/internal/model"
	"issueboard/internal/repository"
)

// Errors maps a form field (JSON name) to its message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+e[f])
	}
	return strings.Join(parts, "; ")
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	must(val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(val.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		_, err := model.NormalizePriority(fl.Field().String())
		return err == nil
	}))
	must(val.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return model.Status(fl.Field().String()).Valid()
	}))
	must(val.RegisterValidation("projectrole", func(fl validator.FieldLevel) bool {
		return model.ProjectRole(fl.Field().String()).Valid()
	}))
	must(val.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	}))
	return val
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct runs the tag rules of a form struct and converts failures to Errors.
func Struct(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if unit != "" {
			return fmt.Sprintf("must be at least %s%s", fe.Param(), unit)
		}
		return "must be at least " + fe.Param()
	case "max":
		if unit != "" {
			return fmt.Sprintf("must be at most %s%s", fe.Param(), unit)
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "priority":
		return "must be one of P1, P2, P3, P4, P5"
	case "status":
		return "must be one of to_do, in_progress, in_review, done"
	case "projectrole", "role":
		return "is not a known role"
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}

// Message picks the text a form shows for err: its own field errors, the backend's message
// verbatim, or fallback when neither applies.
func Message(err error, fallback string) string {
	var ferr Errors
	if errors.As(err, &ferr) {
		return ferr.Error()
	}
	if msg, ok := repository.ServerMessage(err); ok {
		return msg
	}
	return fallback
}

// ParseLabels splits the comma-separated labels input, dropping blanks.
func ParseLabels(raw string) []string {
	labels := []string{}
	for _, l := range strings.Split(raw, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
