package handler

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Имя персонажа: латиница, цифры и пробелы
var alphanumSpaceRegex = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

func validateAlphanumSpace(fl validator.FieldLevel) bool {
	return alphanumSpaceRegex.MatchString(fl.Field().String())
}

// RegisterValidators adds the custom binding rules to gin's validator.
// Must be called before the routes serve requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("alphanumspace", validateAlphanumSpace); err != nil {
		return fmt.Errorf("register alphanumspace: %w", err)
	}
	return nil
}
