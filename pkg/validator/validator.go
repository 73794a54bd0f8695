package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"signing-oracle/pkg/bip32"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var once sync.Once

// Init 在 gin 默认的校验引擎上注册自定义规则
func Init() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register 注册自定义规则:
//
//	kdahex  - 64 位小写 hex 公钥
//	kdapath - m/44'/626' 下的派生路径
//	decimal - 非负十进制字面量 (允许指数形式)
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("kdahex", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 64 {
			return false
		}
		for i := 0; i < len(s); i++ {
			c := s[i]
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("kdapath", func(fl validator.FieldLevel) bool {
		_, err := bip32.ParseKadenaPath(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			param := e.Param()

			switch tag {
			case "required", "required_if":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 长度至少为 %s", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 长度不能超过 %s", field, param))
			case "oneof":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 [%s] 之一", field, param))
			case "kdahex":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 64 位小写 hex 公钥", field))
			case "kdapath":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 m/44'/626' 下的路径", field))
			case "decimal":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是非负十进制数", field))
			case "hexadecimal":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 hex 字符串", field))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, tag))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
