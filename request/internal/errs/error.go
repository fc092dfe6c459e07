package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedOperator  = errors.New("dbrequest: 不支持的操作符")
	ErrConnection           = errors.New("dbrequest: 连接失败")
	ErrQueryExecution       = errors.New("dbrequest: 查询执行失败")
	ErrNotConnected         = errors.New("dbrequest: 连接不可用")
	ErrIndexOutOfRange      = errors.New("dbrequest: 下标越界")
	ErrMalformedAST         = errors.New("dbrequest: 非法的 AST")
	ErrUnexpectedResult     = errors.New("dbrequest: 后端返回了非预期的结果")
	ErrUnsupportedQueryType = errors.New("dbrequest: 不支持的查询类型")
	ErrPointOnly            = errors.New("dbrequest: 只支持指向结构体的一级指针")
	ErrEmptyUpdate          = errors.New("dbrequest: 没有赋值语句")
)

// NewErrUnsupportedOperator 构造时就报错，而不是等到执行的时候
func NewErrUnsupportedOperator(op string) error {
	return fmt.Errorf("%w %q", ErrUnsupportedOperator, op)
}

// NewErrConnection 给后端实现用，包装 connect 钩子的错误
func NewErrConnection(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

// NewErrQueryExecution 给后端实现用，包装 process-query 钩子的错误
func NewErrQueryExecution(err error) error {
	return fmt.Errorf("%w: %w", ErrQueryExecution, err)
}

func NewErrMalformedAST(reason string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedAST, fmt.Sprintf(reason, args...))
}

func NewErrUnexpectedResult(typ string, res any) error {
	return fmt.Errorf("%w: %s 查询得到 %T", ErrUnexpectedResult, typ, res)
}

func NewErrUnsupportedQueryType(typ string) error {
	return fmt.Errorf("%w %s", ErrUnsupportedQueryType, typ)
}

func NewErrIndexOutOfRange(idx, length int) error {
	return fmt.Errorf("%w: %d, 长度 %d", ErrIndexOutOfRange, idx, length)
}

func NewUnknownField(name string) error {
	return fmt.Errorf("dbrequest: 未知字段 %s", name)
}

func NewUnknownColumn(name string) error {
	return fmt.Errorf("dbrequest: 未知列 %s", name)
}

func NewErrInvalidTagContext(pair string) error {
	return fmt.Errorf("dbrequest: 非法标签 %s", pair)
}

func NewErrUnknownFunc(name string) error {
	return fmt.Errorf("%w: 未知函数 %s", ErrQueryExecution, name)
}
