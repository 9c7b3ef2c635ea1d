package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-money-keeper/internal/app"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
)

// withContentHash verifies the request body against the blake2b digest in
// the [utils.ContentHashHeader] header. Requests without the header pass
// through unchecked. The body is restored for the next handler.
func (h *Handler) withContentHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := r.Header.Get(utils.ContentHashHeader)
		if expected == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withContentHash").Msg("failed to read request body")
			utils.WriteError(w, app.MsgUnreadableBody, http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		actual := utils.BodyHash(body)
		if actual != expected {
			log.Error().Str("func", "*Handler.withContentHash").
				Str("hash from request", expected).
				Str("hashed body", actual).
				Msg("hashes are not equal")
			utils.WriteError(w, ErrContentHashMismatch.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
