package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var errNilConfig = errors.New("config is nil")

// ValidationError 配置校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %s", e.Field, e.Message)
}

// Validator 配置校验器
//
// 收集所有字段错误，通过 multierr 合并返回。
type Validator struct {
	err error
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{}
}

// addError 添加错误
func (v *Validator) addError(field, format string, args ...any) {
	v.err = multierr.Append(v.err, &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Err 返回合并后的错误，无错误时为 nil
func (v *Validator) Err() error {
	return v.err
}

// Errors 返回所有单独的错误
func (v *Validator) Errors() []error {
	return multierr.Errors(v.err)
}
