package signup

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dalemusser/signup/internal/app/system/htmlsanitize"
	"github.com/go-playground/validator/v10"
)

// Form is the posted sign-up form. Field names in error maps are the
// form tag names.
type Form struct {
	FirstName   string `form:"first_name" validate:"required,max=100"`
	LastName    string `form:"last_name" validate:"required,max=100"`
	Email       string `form:"email" validate:"required,max=254,email"`
	CompanyName string `form:"company_name" validate:"max=200"`
	Country     string `form:"country" validate:"required,country"`
	Role        string `form:"role" validate:"required,role"`
}

// lookup is the part of the static-data cache the form validator needs.
type lookup interface {
	HasCountry(code string) bool
	HasRole(code string) bool
}

func newValidator(l lookup) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	mustRegister(v, "country", func(fl validator.FieldLevel) bool {
		return l.HasCountry(fl.Field().String())
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		return l.HasRole(fl.Field().String())
	})
	return v
}

// mustRegister panics when tag cannot be registered; that only happens for
// an empty tag or nil func.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("signup: register %q validation: %v", tag, err))
	}
}

// readForm pulls the form fields from r, trimmed and stripped of markup.
func readForm(r *http.Request) Form {
	clean := func(name string) string {
		return htmlsanitize.PlainText(r.PostFormValue(name))
	}
	return Form{
		FirstName:   clean("first_name"),
		LastName:    clean("last_name"),
		Email:       clean("email"),
		CompanyName: clean("company_name"),
		Country:     strings.TrimSpace(r.PostFormValue("country")),
		Role:        strings.TrimSpace(r.PostFormValue("role")),
	}
}

// fieldErrors validates f and returns one message per failing field, or nil.
func fieldErrors(v *validator.Validate, f Form) map[string]string {
	err := v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Please use at most " + fe.Param() + " characters."
	case "email":
		return "Please enter a valid email address."
	case "country":
		return "Please choose a country from the list."
	case "role":
		return "Please choose a role from the list."
	}
	return "This value is not valid."
}
