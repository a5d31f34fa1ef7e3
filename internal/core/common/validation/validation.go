package validation

import (
	"fmt"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/shopspring/decimal"
)

type ValidatorFunc func(interface{}) *errors.AppError

// FieldValidator holds the rules for one field. Only the first failing rule
// of a field is reported.
type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) add(rule ValidatorFunc) *FieldValidator {
	fv.Validators = append(fv.Validators, rule)
	return fv
}

func (fv *FieldValidator) fail(code errors.ErrorCode, format string, args ...interface{}) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf(format, args...), code)
}

// stringValue unwraps string and *string; ok is false for nil or other types.
func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

func (fv *FieldValidator) Required() *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case nil:
			missing = true
		case int64:
			missing = v == 0
		case decimal.Decimal:
			missing = v.IsZero()
		default:
			s, ok := stringValue(value)
			missing = !ok || s == ""
		}
		if missing {
			return fv.fail(errors.ErrCodeValidationFailed, "%s is required", fv.FieldName)
		}
		return nil
	})
}

func (fv *FieldValidator) MinInt(min int64, code errors.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok && v < min {
			return fv.fail(code, "%s must be at least %d", fv.FieldName, min)
		}
		return nil
	})
}

func (fv *FieldValidator) MinDecimal(min decimal.Decimal, code errors.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(decimal.Decimal); ok && v.LessThan(min) {
			return fv.fail(code, "%s must be at least %s", fv.FieldName, min.String())
		}
		return nil
	})
}

// WholeNumber rejects decimals with a fractional part.
func (fv *FieldValidator) WholeNumber(code errors.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(decimal.Decimal); ok && !v.IsInteger() {
			return fv.fail(code, "%s must be a whole number", fv.FieldName)
		}
		return nil
	})
}

// Digits accepts a nil pointer; a present value must be between min and max
// ASCII digits long.
func (fv *FieldValidator) Digits(min, max int, code errors.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if len(s) >= min && len(s) <= max && allDigits(s) {
			return nil
		}
		if min == max {
			return fv.fail(code, "%s must be %d digits", fv.FieldName, min)
		}
		return fv.fail(code, "%s must be %d to %d digits", fv.FieldName, min, max)
	})
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if s, ok := stringValue(value); ok && len(s) > max {
			return fv.fail(errors.ErrCodeValidationFailed, "%s must not exceed %d characters", fv.FieldName, max)
		}
		return nil
	})
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	return fv.add(validator)
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var collected []errors.ValidationError

	for _, field := range v.fields {
		for _, rule := range field.Validators {
			appErr := rule(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				collected = append(collected, details.Errors...)
			} else {
				collected = append(collected, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			break
		}
	}

	if len(collected) == 0 {
		return nil
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: collected})
}
