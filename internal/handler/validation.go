package handler

import (
	"fmt"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func repeatUnit(fl validator.FieldLevel) bool {
	return model.RepeatType(fl.Field().String()).IsUnit()
}

// RegisterValidation registers custom tags on the validator used by gin. Inspiration: https://blog.logrocket.com/gin-binding-in-go-a-tutorial-with-examples/
func RegisterValidation() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("error getting validation engine")
	}
	return v.RegisterValidation("repeatUnit", repeatUnit)
}
