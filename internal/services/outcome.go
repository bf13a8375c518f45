package services

import (
	"errors"
	"fmt"

	"storefront/internal/result"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ruleViolation carries an expected failure out of a unit of work so that the work is
// rolled back and the failure is still reported as a Result.
type ruleViolation struct {
	res result.Result
}

func (e *ruleViolation) Error() string {
	return e.res.Message
}

func abort(kind result.Kind, code result.Code, format string, args ...any) error {
	return &ruleViolation{res: result.Fail(kind, code, fmt.Sprintf(format, args...))}
}

// asViolation extracts the failed Result from an error returned by a unit of work.
func asViolation(err error) (result.Result, bool) {
	var v *ruleViolation
	if errors.As(err, &v) {
		return v.res, true
	}
	return result.Result{}, false
}

// validationResult turns a validator error into a failed Result naming the first
// offending field.
func validationResult(err error) (result.Result, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput,
			fmt.Sprintf("field '%s' failed on the '%s' rule", e.Field(), e.Tag())), true
	}
	return result.Result{}, false
}

// checkAmount validates a currency amount: non-negative with at most two decimals.
func checkAmount(field string, amount decimal.Decimal) (result.Result, bool) {
	if amount.IsNegative() {
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput,
			fmt.Sprintf("field '%s' must not be negative", field)), false
	}
	if !amount.Equal(amount.Round(2)) {
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput,
			fmt.Sprintf("field '%s' must have at most two decimal places", field)), false
	}
	return result.Result{}, true
}
