package http

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jmanzanog/devfolio/internal/domain"
)

var socialPlatforms = map[string]bool{
	"github":   true,
	"linkedin": true,
	"twitter":  true,
	"website":  true,
}

// RegisterValidators registers the custom request validators with gin's
// binding engine.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("section_type", validateSectionType)
		_ = v.RegisterValidation("social_platform", validateSocialPlatform)
	}
}

func validateSectionType(fl validator.FieldLevel) bool {
	return domain.SectionType(fl.Field().String()).IsValid()
}

func validateSocialPlatform(fl validator.FieldLevel) bool {
	return socialPlatforms[fl.Field().String()]
}
