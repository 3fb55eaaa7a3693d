package errno

import (
	"errors"
	"fmt"
	"strings"
)

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Common Errors
var (
	OK         = Errno{Code: 0, Message: "Success"}
	Unexpected = Errno{Code: 10001, Message: "unexpected error"}
)

// Transaction pipeline errors (20000+)
var (
	ErrInvalidValue   = Errno{Code: 20001, Message: "invalid value"}
	ErrRpcUnreachable = Errno{Code: 20002, Message: "server is unreachable"}
	ErrTxFailed       = Errno{Code: 20003, Message: "transaction execution failed"}
	ErrTimeout        = Errno{Code: 20004, Message: "transaction confirmation timed out"}
	ErrOthers         = Errno{Code: 20005, Message: "others"}
)

// Err 是管道中所有错误的具体类型
// Kind 决定分类, 其余字段按分类选填
type Err struct {
	Kind Errno

	// InvalidValue
	Raw    string
	Field  string
	Detail string

	// TxFailed / Timeout: 已知的交易哈希 (可能为空)
	TxHash string

	Cause error
}

func (e *Err) Error() string {
	switch e.Kind {
	case ErrInvalidValue:
		return fmt.Sprintf("%s is not a valid value for %s, err: %s", e.Raw, e.Field, e.Detail)
	case ErrTxFailed:
		return fmt.Sprintf("%s: %s", e.Kind.Message, e.TxHash)
	case ErrTimeout:
		if e.TxHash == "" {
			return e.Kind.Message
		}
		return fmt.Sprintf("%s, tx may still be pending: %s", e.Kind.Message, e.TxHash)
	}

	var b strings.Builder
	b.WriteString(e.Kind.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap 让 errors.Is(err, errno.ErrTimeout) 以及 errors.Is(err, cause) 都成立
func (e *Err) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func InvalidValue(raw, field, detail string) error {
	return &Err{Kind: ErrInvalidValue, Raw: raw, Field: field, Detail: detail}
}

func RpcUnreachable(cause error) error {
	return &Err{Kind: ErrRpcUnreachable, Cause: cause}
}

func TxFailed(txHash string) error {
	return &Err{Kind: ErrTxFailed, TxHash: txHash}
}

func Timeout(txHash string, cause error) error {
	return &Err{Kind: ErrTimeout, TxHash: txHash, Cause: cause}
}

func Others(detail string, cause error) error {
	return &Err{Kind: ErrOthers, Detail: detail, Cause: cause}
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed *Err
	if errors.As(err, &typed) {
		return typed.Kind.Code, typed.Error()
	}

	var plain Errno
	if errors.As(err, &plain) {
		return plain.Code, plain.Message
	}
	return Unexpected.Code, err.Error()
}

// Kind 返回 err 所属的分类, 无法识别时为 Unexpected
func Kind(err error) Errno {
	if err == nil {
		return OK
	}
	var typed *Err
	if errors.As(err, &typed) {
		return typed.Kind
	}
	var plain Errno
	if errors.As(err, &plain) {
		return plain
	}
	return Unexpected
}

// TxHash 取出 TxFailed / Timeout 携带的交易哈希
func TxHash(err error) (string, bool) {
	var typed *Err
	if errors.As(err, &typed) && typed.TxHash != "" {
		return typed.TxHash, true
	}
	return "", false
}

// ExitCode maps an error to the process exit status. Only the CLI should call it.
func ExitCode(err error) int {
	switch Kind(err) {
	case OK:
		return 0
	case ErrInvalidValue:
		return 2
	case ErrRpcUnreachable:
		return 3
	case ErrTxFailed:
		return 4
	case ErrTimeout:
		return 5
	default:
		return 1
	}
}
