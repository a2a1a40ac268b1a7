package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(t *testing.T, handle func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(RequestIDKey, "req-1")
	handle(c)

	var env Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHandleIdempotent(t *testing.T) {
	w, env := record(t, func(c *gin.Context) {
		HandleIdempotent(c, gin.H{"id": "o-1"}, false, "created", "replayed")
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(ReplayedHeader))
	assert.Equal(t, "created", env.Message)
	assert.Equal(t, "req-1", env.RequestID)

	w, env = record(t, func(c *gin.Context) {
		HandleIdempotent(c, gin.H{"id": "o-1"}, true, "created", "replayed")
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(ReplayedHeader))
	assert.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, "replayed", env.Message)
}

func TestHandlePaginatedSetsTotalCount(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandlePaginated(c, []string{"a", "b"}, NewPagination(1, 2, 5), "ok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get(TotalCountHeader))

	var env PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Pagination.TotalPages)
}

func TestHandleAcknowledged(t *testing.T) {
	w, env := record(t, func(c *gin.Context) {
		HandleAcknowledged(c, gin.H{"outcome": "ignored"})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "acknowledged", env.Message)
}
