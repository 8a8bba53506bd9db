package handler

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator 讓 echo 的 c.Validate 使用 go-playground/validator
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
