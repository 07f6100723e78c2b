package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一的返回结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功, 把对象包装成统一结构返回
func Success(data any, c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "Success",
		Data:    data,
	})
}

// Failed 失败, 返回 ApiException；非业务异常统一转成内部错误
func Failed(err error, c *gin.Context) {
	httpCode := http.StatusInternalServerError

	var apiErr *ApiException
	if errors.As(err, &apiErr) {
		if apiErr.HttpCode != 0 {
			httpCode = apiErr.HttpCode
		}
	} else {
		apiErr = ErrServerInternal("%s", err.Error())
	}

	c.AbortWithStatusJSON(httpCode, apiErr)
}

// ApiException 用于描述业务异常
type ApiException struct {
	// 业务异常的编码
	Code int `json:"code"`
	// 异常描述信息
	Message string `json:"message"`
	// 不会出现在 Body 里面, 只用于设置 HTTP 状态码
	HttpCode int `json:"-"`
}

func (e *ApiException) Error() string {
	return e.Message
}

func ErrServerInternal(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     50000,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusInternalServerError,
	}
}

func ErrNotFound(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     40400,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusNotFound,
	}
}
