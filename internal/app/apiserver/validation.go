package apiserver

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/sandwiches"
)

var validatorsOnce sync.Once

// registerValidators attaches domain validations to gin's binding engine.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("breadtype", func(fl validator.FieldLevel) bool {
			return sandwiches.ValidBreadType(fl.Field().String())
		})
	})
}
