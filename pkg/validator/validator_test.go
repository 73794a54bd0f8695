package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Key    string `validate:"required,kdahex"`
	Path   string `validate:"required,kdapath"`
	Amount string `validate:"required,decimal"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestCustomRules(t *testing.T) {
	v := newValidate()
	ok := sample{
		Key:    strings.Repeat("ab", 32),
		Path:   "m/44'/626'/0'/0/0",
		Amount: "1.0e-6",
	}
	assert.NoError(t, v.Struct(ok))

	tests := []struct {
		name   string
		mutate func(*sample)
		want   string
	}{
		{"uppercase key", func(s *sample) { s.Key = strings.Repeat("AB", 32) }, "Key 必须是 64 位小写 hex 公钥"},
		{"foreign path", func(s *sample) { s.Path = "m/44'/60'/0'" }, "Path 必须是 m/44'/626' 下的路径"},
		{"negative amount", func(s *sample) { s.Amount = "-1" }, "Amount 必须是非负十进制数"},
		{"missing amount", func(s *sample) { s.Amount = "" }, "Amount 不能为空"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ok
			tt.mutate(&s)
			err := v.Struct(s)
			assert.Error(t, err)
			assert.Equal(t, tt.want, GetErrorMsg(err))
		})
	}
}

func TestGetErrorMsgFallback(t *testing.T) {
	assert.Equal(t, "请求参数错误", GetErrorMsg(errors.New("EOF")))
}
