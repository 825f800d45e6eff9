package borrowings

import (
	"errors"
	"fmt"

	"LIBRIS-backend/internal/library/members"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidDueDate  Code = "INVALID_DUE_DATE"
	CodePeriodTooLong   Code = "BORROW_PERIOD_TOO_LONG"
	CodeNotFound        Code = "NOT_FOUND"
	CodeBookUnavailable Code = "BOOK_UNAVAILABLE"
	CodeIneligible      Code = "MEMBER_INELIGIBLE"
	CodeAlreadyReturned Code = "ALREADY_RETURNED"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrInvalidDueDate(msg string) *APIError {
	return &APIError{Code: CodeInvalidDueDate, Message: msg}
}

func ErrPeriodTooLong(maxDays int) *APIError {
	return &APIError{Code: CodePeriodTooLong, Message: fmt.Sprintf("maximum borrowing period is %d days", maxDays)}
}

func ErrBookUnavailable() *APIError {
	return &APIError{Code: CodeBookUnavailable, Message: "book is not available for borrowing"}
}

func ErrIneligible(reason members.Reason) *APIError {
	return &APIError{Code: CodeIneligible, Message: fmt.Sprintf("cannot borrow: %s", reason)}
}

func ErrAlreadyReturned() *APIError {
	return &APIError{Code: CodeAlreadyReturned, Message: "book has already been returned"}
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeInvalidDueDate, CodePeriodTooLong:
			return 400
		case CodeNotFound:
			return 404
		case CodeBookUnavailable, CodeIneligible, CodeAlreadyReturned, CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// HasCode: テスト・ハンドラでの分類用
func HasCode(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}
