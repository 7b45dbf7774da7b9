// internal/models/validation.go
package models

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(classRankWithinSize, Profile{})
	})
	return validate
}

func classRankWithinSize(sl validator.StructLevel) {
	p := sl.Current().Interface().(Profile)
	if p.ClassRank != nil && p.ClassSize != nil && *p.ClassRank > *p.ClassSize {
		sl.ReportError(p.ClassRank, "ClassRank", "classRank", "ltefield", "ClassSize")
	}
}

// ValidateProfile checks field ranges, required sub-record fields, and that
// class rank does not exceed class size.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	err := profileValidator().Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid profile: %s", strings.Join(msgs, "; "))
}
