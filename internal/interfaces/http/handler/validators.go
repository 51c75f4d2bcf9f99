package handler

import (
	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom binding validations for domain enums used in query strings.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("importstatus", func(fl validator.FieldLevel) bool {
		return sales.ImportStatus(fl.Field().String()).IsValid()
	})
}
