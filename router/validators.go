package router

import (
	"CloudVault/internal/service"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorsOnce sync.Once

// registerValidators adds the custom binding tags used by request DTOs.
func registerValidators() error {
	var err error
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = v.RegisterValidation("share_expiry", func(fl validator.FieldLevel) bool {
			return service.ValidShareExpiry(fl.Field().String())
		})
	})
	return err
}
