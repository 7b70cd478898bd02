package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("strategy", isKnownStrategy); err != nil {
		return nil, nil, fmt.Errorf("failed to register strategy validation: %w", err)
	}
	if err := validate.RegisterTranslation("strategy", trans, func(ut ut.Translator) error {
		return ut.Add("strategy", "{0} must be one of {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		names := make([]string, 0, len(scheduler.Strategies))
		for _, s := range scheduler.Strategies {
			names = append(names, string(s))
		}
		t, _ := ut.T("strategy", strings.TrimPrefix(fe.Namespace(), "Config."), strings.Join(names, ", "))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register strategy translation: %w", err)
	}

	return validate, trans, nil
}

func isKnownStrategy(fl validator.FieldLevel) bool {
	_, err := scheduler.ParseStrategy(fl.Field().String())
	return err == nil
}
