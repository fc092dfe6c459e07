package request

import "dbrequest/request/internal/errs"

// 对外暴露的错误，用 errors.Is 判断
var (
	ErrUnsupportedOperator  = errs.ErrUnsupportedOperator
	ErrConnection           = errs.ErrConnection
	ErrQueryExecution       = errs.ErrQueryExecution
	ErrNotConnected         = errs.ErrNotConnected
	ErrIndexOutOfRange      = errs.ErrIndexOutOfRange
	ErrMalformedAST         = errs.ErrMalformedAST
	ErrUnexpectedResult     = errs.ErrUnexpectedResult
	ErrUnsupportedQueryType = errs.ErrUnsupportedQueryType
	ErrPointOnly            = errs.ErrPointOnly
	ErrEmptyUpdate          = errs.ErrEmptyUpdate
)

// NewErrConnection 后端的 Connect 失败时用它包装
func NewErrConnection(err error) error {
	return errs.NewErrConnection(err)
}

// NewErrQueryExecution 后端的 ProcessQuery 失败时用它包装
func NewErrQueryExecution(err error) error {
	return errs.NewErrQueryExecution(err)
}

func NewErrMalformedAST(reason string, args ...any) error {
	return errs.NewErrMalformedAST(reason, args...)
}

func NewErrUnsupportedQueryType(typ QueryType) error {
	return errs.NewErrUnsupportedQueryType(typ.String())
}
