// Package result defines the success/failure values returned by business operations.
//
// Expected failures (not found, validation, business rules, concurrency conflicts) are
// reported through a Result with Success == false. Infrastructure faults are never encoded
// here; operations return them as a separate error.
package result

// Kind classifies an expected failure.
type Kind string

const (
	KindNone                  Kind = ""
	KindNotFound              Kind = "NotFound"
	KindValidationFailure     Kind = "ValidationFailure"
	KindBusinessRuleViolation Kind = "BusinessRuleViolation"
	KindConcurrencyConflict   Kind = "ConcurrencyConflict"
)

// Code names the specific failure within its Kind.
type Code string

const (
	CodeNone                    Code = ""
	CodeEmptyCart               Code = "EmptyCart"
	CodeProductUnavailable      Code = "ProductUnavailable"
	CodeInsufficientStock       Code = "InsufficientStock"
	CodeInvalidStatusTransition Code = "InvalidStatusTransition"
	CodeAddressNotFound         Code = "AddressNotFound"
	CodeOrderNotFound           Code = "OrderNotFound"
	CodeProductNotFound         Code = "ProductNotFound"
	CodeCategoryNotFound        Code = "CategoryNotFound"
	CodeCartItemNotFound        Code = "CartItemNotFound"
	CodeInvalidInput            Code = "InvalidInput"
	CodeStaleWrite              Code = "StaleWrite"
)

// Result is the plain outcome of an operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind,omitempty"`
	Code    Code   `json:"code,omitempty"`
}

// DataResult is an outcome carrying data. Data holds the zero value unless Success is true.
type DataResult[T any] struct {
	Result
	Data T `json:"data,omitempty"`
}

// Ok returns a successful Result.
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail returns a failed Result.
func Fail(kind Kind, code Code, message string) Result {
	return Result{Kind: kind, Code: code, Message: message}
}

// OkData returns a successful DataResult carrying data.
func OkData[T any](data T, message string) DataResult[T] {
	return DataResult[T]{Result: Ok(message), Data: data}
}

// FailData returns a failed DataResult with zero Data.
func FailData[T any](kind Kind, code Code, message string) DataResult[T] {
	return DataResult[T]{Result: Fail(kind, code, message)}
}

// FromResult carries a failed plain Result over into a DataResult.
func FromResult[T any](r Result) DataResult[T] {
	return DataResult[T]{Result: r}
}

// Is reports whether the result failed with the given code.
func (r Result) Is(code Code) bool {
	return !r.Success && r.Code == code
}
