package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
)

var phoneDZ = regexp.MustCompile(`^0[5-7][0-9]{8}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone_dz", validatePhoneDZ)
	return v
}

// validatePhoneDZ accepts Algerian mobile numbers such as 0551234567.
func validatePhoneDZ(fl validator.FieldLevel) bool {
	return phoneDZ.MatchString(strings.TrimSpace(fl.Field().String()))
}

// validateStruct wraps validation failures in store.ErrInvalidInput so the
// HTTP layer maps them to 400.
func (s *Service) validateStruct(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s:%s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", store.ErrInvalidInput, strings.Join(fields, ","))
	}
	return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
}
