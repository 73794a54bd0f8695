package tx

import (
	"fmt"

	"signing-oracle/pkg/errno"
)

// EncodingError 表示参数不完整或格式错误，在任何设备交互之前返回
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: %s", e.Reason)
}

func (e *EncodingError) Unwrap() error {
	return errno.ErrEncoding
}

func fieldError(field, format string, args ...any) *EncodingError {
	return &EncodingError{Field: field, Reason: field + ": " + fmt.Sprintf(format, args...)}
}
