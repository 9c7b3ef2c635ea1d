package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-money-keeper/internal/app"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrValidationNoUserID:      http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	models.ErrUnknownTable:             http.StatusBadRequest,
	store.ErrInvalidCursor:             http.StatusBadRequest,

	context.DeadlineExceeded: http.StatusGatewayTimeout,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
	store.ErrEncodingRecord:     http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the status mapped from err. Client errors
// carry the error text; server errors carry a fixed message.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	switch {
	case status == http.StatusGatewayTimeout:
		utils.WriteError(w, app.MsgRequestTimeout, status)
	case status >= http.StatusInternalServerError:
		utils.WriteError(w, app.MsgInternalServerError, status)
	default:
		utils.WriteError(w, err.Error(), status)
	}
}
