package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage 返回一个带自定义信息的副本，错误码保持不变
func (e Errno) WithMessage(msg string) Errno {
	return Errno{Code: e.Code, Message: msg}
}

// Decode tries to convert an error to Errno.
// 包装过的错误 (fmt.Errorf("%w") 或实现了 Unwrap 的类型) 会沿链查找。
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		// 外层错误通常带有更具体的上下文，优先使用其文本
		return typed.Code, err.Error()
	}
	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrNotFound         = Errno{Code: 10004, Message: "Record not found"}
)

// Oracle Errors (30000+)
var (
	// 本地校验错误：在任何设备交互之前发现，不重试
	ErrEncoding = Errno{Code: 30101, Message: "Encoding error"}
	ErrDecoding = Errno{Code: 30102, Message: "Decoding error"}

	// 设备侧错误
	ErrDeviceRejected = Errno{Code: 30201, Message: "Transaction rejected"}
	ErrDevice         = Errno{Code: 30202, Message: "Device error"}

	// 验签
	ErrVerificationInput = Errno{Code: 30301, Message: "Verification input error"}
	ErrSignatureInvalid  = Errno{Code: 30302, Message: "Signature verification failed"}
	ErrHashMismatch      = Errno{Code: 30303, Message: "Device hash does not match local hash"}
	ErrAddressMismatch   = Errno{Code: 30304, Message: "Device public key does not match expected key"}
)
