package recipients

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPhone is returned for numbers outside ^\+?[0-9]{10,15}$.
var ErrInvalidPhone = errors.New("phone must be 10-15 digits with an optional leading +")

var (
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	validate   *validator.Validate
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		return ok && phoneRegex.MatchString(str)
	})
	if err != nil {
		panic(err)
	}
}

// Input is the request body for registering a recipient.
type Input struct {
	Phone string `json:"phone" validate:"required,phone"`
}

// Validate trims and checks the phone number.
func (in *Input) Validate() error {
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validate.Struct(in); err != nil {
		return ErrInvalidPhone
	}
	return nil
}

// ValidPhone reports whether phone is an acceptable recipient number.
func ValidPhone(phone string) bool {
	in := Input{Phone: phone}
	return in.Validate() == nil
}
