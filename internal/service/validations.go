package service

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if len(value) > 20 {
				return false
			}
			digits := 0
			for i, char := range value {
				switch {
				case unicode.IsDigit(char):
					digits++
				// Leading plus only
				case char == '+':
					if i != 0 {
						return false
					}
				case strings.ContainsRune(" -()", char):
				default:
					return false
				}
			}
			return digits >= 3
		})
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
