package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// ReplayedHeader marks a response served from an earlier request with the
	// same idempotency key.
	ReplayedHeader = "Idempotent-Replayed"
	// TotalCountHeader carries the unpaged item count of a list response.
	TotalCountHeader = "X-Total-Count"
)

func writeSuccess(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      status,
		RequestID: getRequestID(c),
	})
}

func HandleSuccess(c *gin.Context, data interface{}, message string) {
	writeSuccess(c, http.StatusOK, data, message)
}

func HandleCreated(c *gin.Context, data interface{}, message string) {
	writeSuccess(c, http.StatusCreated, data, message)
}

// HandleIdempotent answers 201 for a new resource and 200 with the replay
// header when the idempotency key matched an earlier request.
func HandleIdempotent(c *gin.Context, data interface{}, replayed bool, created, replayedMessage string) {
	if replayed {
		c.Header(ReplayedHeader, "true")
		writeSuccess(c, http.StatusOK, data, replayedMessage)
		return
	}
	writeSuccess(c, http.StatusCreated, data, created)
}

// HandleAcknowledged answers a webhook delivery. Providers only look at the
// status code, so the body carries the outcome for operators.
func HandleAcknowledged(c *gin.Context, data interface{}) {
	writeSuccess(c, http.StatusOK, data, "acknowledged")
}

func HandlePaginated(c *gin.Context, data interface{}, pagination Pagination, message string) {
	c.Header(TotalCountHeader, strconv.FormatInt(pagination.TotalItems, 10))
	c.JSON(http.StatusOK, &PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Message:    message,
		Code:       http.StatusOK,
		RequestID:  getRequestID(c),
	})
}
