package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"
	"sync/atomic"

	"fulfillment/domain/shared"
	"fulfillment/pkg/errors"
	"fulfillment/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var exposeDetail atomic.Bool

// ExposeErrorDetail toggles the detail field of error responses.
// The router enables it for every environment except production.
func ExposeErrorDetail(enabled bool) {
	exposeDetail.Store(enabled)
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func GetRequestID(c *gin.Context) string {
	return getRequestID(c)
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleBindError answers request binding failures with 400.
func HandleBindError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	logger.Warn("invalid request parameters",
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err))

	resp := &Response{
		Success:   false,
		Error:     string(errors.CodeValidation),
		Message:   "invalid request parameters",
		Code:      http.StatusBadRequest,
		RequestID: requestID,
	}
	if exposeDetail.Load() {
		resp.Detail = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// HandleAppError maps err to its status code, logs it with a stack and
// writes the failure envelope.
func HandleAppError(c *gin.Context, err error) {
	requestID := getRequestID(c)
	appErr := errors.FromDomainError(err)
	httpStatus := appErr.HTTPStatusCode()

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	if httpStatus >= http.StatusInternalServerError {
		fields = append(fields, zap.Strings("stack", extractStack(err)))
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	userMessage := appErr.Message
	if appErr.Code == errors.CodeInternal {
		userMessage = "internal server error"
	}

	resp := &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Field:     appErr.Field,
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	}
	if exposeDetail.Load() {
		resp.Detail = err.Error()
	}
	c.JSON(httpStatus, resp)
}

// HandleStatus writes a failure envelope with an explicit status, for errors
// raised by middleware before any service runs.
func HandleStatus(c *gin.Context, status int, code errors.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Success:   false,
		Error:     string(code),
		Message:   message,
		Code:      status,
		RequestID: getRequestID(c),
	})
}

func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
