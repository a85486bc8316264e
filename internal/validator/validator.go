package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/domain"
)

var looseEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validator checks registration input and translates failures into field messages.
type Validator struct {
	v     *govalidator.Validate
	trans ut.Translator
}

// New builds a validator with English translations and the custom candidate tags.
func New() *Validator {
	v := govalidator.New()

	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("loose_email", func(fl govalidator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("branch", func(fl govalidator.FieldLevel) bool {
		return catalog.IsBranch(fl.Field().String())
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	registerMessage(v, trans, "loose_email", "{0} must be a valid email address")
	registerMessage(v, trans, "branch", "{0} must be one of the listed branches")
	registerMessage(v, trans, "number", "{0} must contain digits only")

	return &Validator{v: v, trans: trans}
}

func registerMessage(v *govalidator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			msg, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// ValidateCandidate normalizes whitespace and validates every registration field.
// It returns the normalized candidate, or a *domain.ValidationError naming all
// offending fields.
func (val *Validator) ValidateCandidate(c domain.Candidate) (domain.Candidate, error) {
	c = Normalize(c)
	if err := val.v.Struct(c); err != nil {
		return domain.Candidate{}, val.translate(err)
	}
	return c, nil
}

// Normalize trims surrounding whitespace from text fields.
func Normalize(c domain.Candidate) domain.Candidate {
	c.Name = strings.TrimSpace(c.Name)
	c.City = strings.TrimSpace(c.City)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Branch = strings.TrimSpace(c.Branch)
	return c
}

func (val *Validator) translate(err error) error {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.NewValidationError("detail", err.Error())
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fe.Translate(val.trans)
	}
	return &domain.ValidationError{Fields: fields}
}
