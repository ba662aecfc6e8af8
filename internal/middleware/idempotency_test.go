package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter wires a test router whose handler counts invocations and echoes
// the path parameter, so replays are observable.
func setupRouter(t *testing.T) (*gin.Engine, *int32) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdempotencyMiddleware(client))

	var calls int32
	router.POST("/v1/trips/:id/transition", func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusOK, gin.H{"trip_id": c.Param("id"), "call": n})
	})
	router.POST("/v1/unavailable", func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	return router, &calls
}

func doPost(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysRepeatedKey(t *testing.T) {
	router, calls := setupRouter(t)

	first := doPost(router, "/v1/trips/trip-1/transition", "key-1")
	second := doPost(router, "/v1/trips/trip-1/transition", "key-1")

	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "repeated key must not re-run the handler")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Code, second.Code)
}

func TestIdempotency_KeyIsScopedToResource(t *testing.T) {
	router, calls := setupRouter(t)

	first := doPost(router, "/v1/trips/trip-1/transition", "key-1")
	other := doPost(router, "/v1/trips/trip-2/transition", "key-1")

	// Same key, different trip: both requests must reach the handler and
	// each response must name its own trip.
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Contains(t, first.Body.String(), "trip-1")
	assert.Contains(t, other.Body.String(), "trip-2")
	assert.NotEqual(t, first.Body.String(), other.Body.String())
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	router, calls := setupRouter(t)

	for i := 0; i < 3; i++ {
		doPost(router, "/v1/trips/trip-1/transition", "")
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(calls), "requests without a key are never replayed")
}

func TestIdempotency_ServerErrorsNotReplayed(t *testing.T) {
	router, calls := setupRouter(t)

	for i := 0; i < 2; i++ {
		w := doPost(router, "/v1/unavailable", "key-err")
		assert.Equal(t, http.StatusInternalServerError, w.Code, fmt.Sprintf("attempt %d", i+1))
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(calls), "5xx responses must not be stored for replay")
}
