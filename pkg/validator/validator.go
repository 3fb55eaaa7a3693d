package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"rect/pkg/errno"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// 错误中使用配置键名 (rpc.url) 而不是 Go 字段名
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Struct 校验结构体, 第一个失败的字段转换为 errno.InvalidValue
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		return errno.InvalidValue(fmt.Sprint(e.Value()), fieldPath(e), GetErrorMsg(e))
	}
	return errno.Others("validate", err)
}

// GetErrorMsg translates a validation failure into a short message.
func GetErrorMsg(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "不能为空"
	case "url":
		return "必须是合法的 URL"
	case "gt":
		return fmt.Sprintf("必须大于 %s", e.Param())
	case "oneof":
		return fmt.Sprintf("必须是 [%s] 之一", e.Param())
	default:
		return fmt.Sprintf("校验失败 (%s)", e.Tag())
	}
}

// fieldPath 去掉顶层结构体名: Config.rpc.url -> rpc.url
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
