// Package validation содержит проверку форм мобильного клиента.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("email_pattern", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register email_pattern: %v", err))
	}

	return v
}

// Errors содержит ошибки формы: поле → ключ локализованного сообщения.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate проверяет форму. Возвращает Errors или nil.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	res := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, exists := res[fe.Field()]; exists {
			continue
		}
		res[fe.Field()] = messageKey(fe)
	}
	return res
}

func messageKey(fe validator.FieldError) string {
	required := fe.Tag() == "required" || strings.HasPrefix(fe.Tag(), "required_")

	switch fe.StructField() {
	case "Email":
		if required {
			return "auth.emailRequired"
		}
		return "auth.emailInvalid"
	case "Password", "NewPassword":
		if required {
			return "auth.passwordRequired"
		}
		return "auth.passwordMinLength"
	case "ConfirmPassword":
		if required {
			return "auth.passwordRequired"
		}
		return "auth.passwordMismatchMessage"
	case "Name":
		return "auth.nameRequired"
	}

	if required {
		return "methodsForm.requiredError"
	}
	return "methodsForm.invalidValue"
}
