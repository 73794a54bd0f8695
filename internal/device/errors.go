package device

import (
	"errors"
	"fmt"

	"signing-oracle/pkg/errno"
)

// 设备返回的状态码
const (
	CodeOK              uint16 = 0x9000
	CodeWrongLength     uint16 = 0x6700
	CodeDataInvalid     uint16 = 0x6984
	CodeRejected        uint16 = 0x6986
	CodeSignVerifyError uint16 = 0x6F01
)

var codeText = map[uint16]string{
	CodeOK:              "No errors",
	CodeWrongLength:     "Wrong length",
	CodeDataInvalid:     "Data is invalid",
	CodeRejected:        "Transaction rejected",
	CodeSignVerifyError: "Sign/verify error",
}

// DeviceError 携带设备返回的数字状态码
type DeviceError struct {
	Code    uint16
	Message string
}

// ErrRejected 用于 errors.Is 判断用户是否在设备上拒绝
var ErrRejected = &DeviceError{Code: CodeRejected}

func NewError(code uint16) *DeviceError {
	msg, ok := codeText[code]
	if !ok {
		msg = "Unknown error"
	}
	return &DeviceError{Code: code, Message: msg}
}

func (e *DeviceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = codeText[e.Code]
	}
	return fmt.Sprintf("device: %s (0x%04x)", msg, e.Code)
}

// Is 按状态码比较
func (e *DeviceError) Is(target error) bool {
	t, ok := target.(*DeviceError)
	return ok && t.Code == e.Code
}

func (e *DeviceError) Unwrap() error {
	if e.Code == CodeRejected {
		return errno.ErrDeviceRejected
	}
	return errno.ErrDevice
}

// IsRejected 判断 err 是否为用户拒绝
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
