package errors

import (
	"errors"
	"fmt"
)

// Error 携带 HTTP 状态码的业务错误
type Error struct {
	Code  int
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New 创建一个带状态码的错误
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Newf 创建一个带状态码的格式化错误
func Newf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 在已有错误上附加状态码与说明
func Wrap(code int, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// Code 提取错误对应的 HTTP 状态码，无法识别时归为 500
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 500
}

// As is a convenience re-export so callers don't need both packages.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
