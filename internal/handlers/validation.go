package handler

import (
	"reflect"
	"strings"

	"agency-billing-backend/internal/services/billing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators reports json field names in binding errors and adds the
// yearmonth tag for YYYY-MM strings.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		return billing.ValidBillingMonth(fl.Field().String())
	})
}
