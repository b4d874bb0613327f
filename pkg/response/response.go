/*
 * @Description: 统一的API响应信封
 * @Author: 林远
 * @Date: 2025-09-12 12:16:18
 * @LastEditTime: 2026-05-18 19:08:52
 * @LastEditors: 林远
 */
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkfable/folio-app/pkg/constant"
)

// 信封的 status 字段取值
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// 机器可读的错误码
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorInfo 携带机器可读的错误码和可选的细节信息。
type ErrorInfo struct {
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Response 是统一的API返回结构体。
// 成功时携带 data，失败时携带 error，二者不会同时出现。
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码。
// 这对于返回 201 Created 或 202 Accepted 等状态非常有用。
func SuccessWithStatus(c *gin.Context, httpStatus int, data interface{}, message string) {
	c.JSON(httpStatus, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, httpStatus int, code string, message string) {
	c.JSON(httpStatus, Response{
		Status:  StatusError,
		Message: message,
		Error:   &ErrorInfo{Code: code},
	})
}

// FailWithDetails 失败响应，附带结构化的错误细节（如字段级校验信息）。
func FailWithDetails(c *gin.Context, httpStatus int, code string, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		Status:  StatusError,
		Message: message,
		Error:   &ErrorInfo{Code: code, Details: details},
	})
}

// FailFromError 根据服务层返回的哨兵错误自动选择 HTTP 状态码与错误码。
// 未识别的错误一律按内部错误处理，避免向客户端泄露实现细节。
func FailFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, constant.ErrNotFound),
		errors.Is(err, constant.ErrArticleNotPublished):
		Fail(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, constant.ErrBadRequest),
		errors.Is(err, constant.ErrInvalidPublicID),
		errors.Is(err, constant.ErrParentCommentNotFound),
		errors.Is(err, constant.ErrCommentHasChildren),
		errors.Is(err, constant.ErrSubscriberNotActive):
		Fail(c, http.StatusBadRequest, CodeValidationError, err.Error())
	case errors.Is(err, constant.ErrUnauthorized), errors.Is(err, constant.ErrInvalidToken):
		Fail(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, constant.ErrForbidden):
		Fail(c, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, constant.ErrConflict), errors.Is(err, constant.ErrAlreadySubscribed):
		Fail(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, constant.ErrRateLimited):
		Fail(c, http.StatusTooManyRequests, CodeRateLimited, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, CodeInternalError, "服务器内部错误")
	}
}
