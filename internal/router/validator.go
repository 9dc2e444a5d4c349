package router

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ems/internal/model"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	salaryLimit   = decimal.New(1, model.SalaryIntegerDigits)
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their JSON name and
// knows the employee rules "mobile", "nonnegative" and "salary".
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("mobile", validateMobile)
	_ = v.RegisterValidation("nonnegative", validateNonNegative)
	_ = v.RegisterValidation("salary", validateSalary)
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. Every failing field is
// reported, not only the first.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func validateMobile(fl validator.FieldLevel) bool {
	return mobilePattern.MatchString(fl.Field().String())
}

func validateNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

// validateSalary accepts amounts the salary column stores without rounding.
func validateSalary(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Abs().LessThan(salaryLimit) && d.Equal(d.Truncate(model.SalaryScale))
}
