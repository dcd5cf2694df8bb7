package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/shiebas/safa-connect-sub002/internal/pkg/response"
)

const idempotencyPrefix = "coin:idem:"

// storedResponse is the cached outcome of the first request with a given key.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency replays the stored response for repeated mutating requests
// carrying the same Idempotency-Key header. Keys are scoped per user and
// route. A request whose first attempt is still in flight gets a 409.
// When Redis is not configured the middleware is a pass-through.
func Idempotency(client *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if client == nil || key == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			redisKey := fmt.Sprintf("%s%s:%s:%s:%s", idempotencyPrefix, GetUserID(r.Context()), r.Method, r.URL.Path, key)

			// Claim the key. First writer wins; everyone else reads the stored outcome.
			claimed, err := client.SetNX(r.Context(), redisKey, "pending", ttl).Result()
			if err != nil {
				log.Error().Err(err).Msg("Idempotency claim failed, passing request through")
				next.ServeHTTP(w, r)
				return
			}

			if !claimed {
				raw, err := client.Get(r.Context(), redisKey).Result()
				if err != nil {
					response.InternalError(w)
					return
				}
				if raw == "pending" {
					response.Conflict(w, "Request with this idempotency key is still being processed")
					return
				}

				var stored storedResponse
				if err := json.Unmarshal([]byte(raw), &stored); err != nil {
					response.InternalError(w)
					return
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotency-Replayed", "true")
				w.WriteHeader(stored.Status)
				w.Write(stored.Body)
				return
			}

			rec := &recordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			stored := storedResponse{Status: rec.statusCode, Body: rec.body.Bytes()}
			payload, err := json.Marshal(stored)
			if err == nil {
				if err := client.Set(r.Context(), redisKey, payload, ttl).Err(); err != nil {
					log.Error().Err(err).Msg("Failed to store idempotent response")
				}
			}
		})
	}
}

// recordingWriter captures the response so it can be replayed later
type recordingWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
