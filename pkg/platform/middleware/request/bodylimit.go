package request

import (
	"encoding/json"
	"net/http"
)

// BodyLimit returns middleware that limits the size of request bodies.
// Oversized bodies fail JSON decoding downstream, which reports a 400 envelope.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeEnvelope(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func envelopeBody(status int, message string) []byte {
	body, _ := json.Marshal(map[string]any{ //nolint:errcheck // static shape
		"statusCode": status,
		"isSuccess":  false,
		"message":    message,
		"data":       nil,
	})
	return body
}
