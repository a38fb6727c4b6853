package validator

import (
	"regexp"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Struct(obj interface{}) error
	Var(value interface{}, tag string) error
	Check(value interface{}, tag string) bool
}

type validator struct {
	engine *playground.Validate
}

var (
	once     sync.Once
	instance *validator

	simpleEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// New returns the shared validator with the custom tags registered.
func New() Validator {
	once.Do(func() {
		engine := playground.New(playground.WithRequiredStructEnabled())
		if err := engine.RegisterValidation("simple_email", isSimpleEmail); err != nil {
			panic(err)
		}
		instance = &validator{engine: engine}
	})
	return instance
}

func (v *validator) Struct(obj interface{}) error {
	return v.engine.Struct(obj)
}

func (v *validator) Var(value interface{}, tag string) error {
	return v.engine.Var(value, tag)
}

func (v *validator) Check(value interface{}, tag string) bool {
	return v.engine.Var(value, tag) == nil
}

// isSimpleEmail accepts the local-part@domain.tld shape and nothing stricter.
func isSimpleEmail(fl playground.FieldLevel) bool {
	return simpleEmail.MatchString(fl.Field().String())
}
