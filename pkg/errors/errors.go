// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 工作区校验错误 (2xxx)，在任何网络调用之前同步拒绝
	CodeEmptyMessage     ErrorCode = "2001"
	CodeCapacityExceeded ErrorCode = "2002"
	CodeNoActiveEditor   ErrorCode = "2003"
	CodeChapterNotOpen   ErrorCode = "2004"
	CodeNoActiveChapter  ErrorCode = "2005"
	CodeNoCurrentProject ErrorCode = "2006"

	// 资源错误 (3xxx)
	CodeProjectNotFound  ErrorCode = "3001"
	CodeChapterNotFound  ErrorCode = "3002"
	CodeProviderNotFound ErrorCode = "3003"
	CodeTemplateNotFound ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeManualModelEntry ErrorCode = "4001"
	CodeStaleResponse    ErrorCode = "4002"

	// 外部服务错误 (5xxx)
	CodeBackendError    ErrorCode = "5001"
	CodeStateStoreError ErrorCode = "5002"
	CodeProviderError   ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息，返回副本以免污染预定义错误
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithStatus 覆盖 HTTP 状态码（例如透传上游状态）
func (e *AppError) WithStatus(status int) *AppError {
	cp := *e
	cp.HTTPStatus = status
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Newf 使用格式化消息创建应用错误
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeEmptyMessage:
		return http.StatusBadRequest
	case CodeNotFound, CodeProjectNotFound, CodeChapterNotFound, CodeProviderNotFound,
		CodeTemplateNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeCapacityExceeded, CodeNoActiveEditor, CodeChapterNotOpen,
		CodeNoActiveChapter, CodeNoCurrentProject, CodeStaleResponse:
		return http.StatusConflict
	case CodeManualModelEntry:
		return http.StatusUnprocessableEntity
	case CodeBackendError, CodeProviderError:
		return http.StatusBadGateway
	case CodeServiceUnavailable, CodeStateStoreError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam  = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound      = New(CodeNotFound, "resource not found")
	ErrInternalError = New(CodeInternalError, "internal server error")

	ErrEmptyMessage     = New(CodeEmptyMessage, "message content cannot be empty")
	ErrNoActiveEditor   = New(CodeNoActiveEditor, "no active editor")
	ErrChapterNotOpen   = New(CodeChapterNotOpen, "chapter is not open")
	ErrNoActiveChapter  = New(CodeNoActiveChapter, "no active chapter")
	ErrNoCurrentProject = New(CodeNoCurrentProject, "no current project selected")

	ErrProviderNotFound = New(CodeProviderNotFound, "provider not found")
	ErrTemplateNotFound = New(CodeTemplateNotFound, "prompt template not found")
	ErrManualModelEntry = New(CodeManualModelEntry, "provider does not support model listing, add models manually")
	ErrStaleResponse    = New(CodeStaleResponse, "response target is no longer current")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
