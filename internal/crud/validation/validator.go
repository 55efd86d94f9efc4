// Package validation validates crud.Attributes against go-playground/validator
// rule strings and reports English, field-keyed messages.
package validation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// Engine wraps a configured validator and its translator. It is safe for
// concurrent use and should be built once.
type Engine struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewEngine constructs an Engine with English translations and custom rules.
func NewEngine() (*Engine, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustomRules(validate, enTrans); err != nil {
		return nil, err
	}

	return &Engine{validate: validate, translator: enTrans}, nil
}

// Check validates a single value against rule and returns a message, or "".
func (e *Engine) Check(field string, value any, rule string) string {
	err := e.validate.Var(value, rule)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Sprintf("%s: %v", field, err)
	}

	msg := strings.TrimSpace(fieldErrs[0].Translate(e.translator))
	return field + " " + msg
}

// RuleSet is an immutable field-to-rule mapping bound to an Engine.
type RuleSet struct {
	engine *Engine
	rules  map[string]string
}

func NewRuleSet(engine *Engine, rules map[string]string) *RuleSet {
	return &RuleSet{engine: engine, rules: maps.Clone(rules)}
}

// Validator returns a fresh validator for one request.
func (rs *RuleSet) Validator() *Validator {
	return &Validator{rules: rs}
}

func (rs *RuleSet) resolve(opts crud.ValidateOptions) map[string]string {
	rules := maps.Clone(rs.rules)
	if rules == nil {
		rules = make(map[string]string)
	}
	for field, rule := range opts.Rules {
		rules[field] = rule
	}

	if len(opts.Only) > 0 {
		for field := range rules {
			if !slices.Contains(opts.Only, field) {
				delete(rules, field)
			}
		}
	}
	return rules
}

// Validator implements crud.Validator. It keeps the errors of its last run,
// so a Validator must not be shared between goroutines.
type Validator struct {
	rules  *RuleSet
	errors crud.ValidationErrors
}

func (v *Validator) IsValid(data crud.Attributes, opts crud.ValidateOptions) bool {
	errs := make(crud.ValidationErrors)
	for field, rule := range v.rules.resolve(opts) {
		if msg := v.rules.engine.Check(field, data[field], rule); msg != "" {
			errs[field] = msg
		}
	}

	if len(errs) == 0 {
		v.errors = nil
		return true
	}

	v.errors = errs
	return false
}

func (v *Validator) Errors() crud.ValidationErrors {
	return v.errors
}

func registerCustomRules(validate *validator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return strings.TrimSpace(s) != ""
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("notblank", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("notblank", "{0} must not be blank", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)
}
