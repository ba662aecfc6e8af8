package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// storedReply is the replayable form of a completed mutating request.
type storedReply struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// captureWriter tees the response body so it can be stored for replay.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a mutating request
// repeats the same Idempotency-Key, so retried transition, clock-action and
// shift-creation posts apply at most once. Keys are scoped per method and
// concrete request path; the same key against two different resources never
// replays across them.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		if data, err := redisClient.Get(ctx, storeKey).Bytes(); err == nil {
			var reply storedReply
			if json.Unmarshal(data, &reply) == nil {
				c.Data(reply.StatusCode, "application/json", reply.Body)
				c.Abort()
				return
			}
		} else if err != redis.Nil {
			// Store unavailable; serve the request without the guarantee.
			c.Next()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// 5xx outcomes are not replayed; the client should retry for real.
		status := c.Writer.Status()
		if status >= 200 && status < 500 {
			if data, err := json.Marshal(storedReply{StatusCode: status, Body: w.body.Bytes()}); err == nil {
				_ = redisClient.Set(ctx, storeKey, data, idempotencyTTL).Err()
			}
		}
	}
}
