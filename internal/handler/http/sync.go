package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-money-keeper/internal/app"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/go-chi/chi/v5"
)

// push handles POST /api/sync/{table}/push. The table in the path wins over
// one in the body; a body naming a different table is rejected.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	table, userID, ok := h.syncScope(w, r)
	if !ok {
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}
	if err := bindTable(&req.Table, table); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.services.SyncService.Push(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("push failed")
		writeServiceError(w, err)
		return
	}

	log.Debug().Str("func", "*Handler.push").
		Int("records", len(req.Records)).
		Int("synced", len(result.SyncedIDs)).
		Int("conflicts", len(result.ConflictIDs)).
		Int("errors", len(result.ErrorMap)).
		Msg("batch applied")

	utils.WriteJSON(w, result, http.StatusOK)
}

// pull handles GET /api/sync/{table}/pull?cursor=&limit=.
func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	table, userID, ok := h.syncScope(w, r)
	if !ok {
		return
	}

	req := models.PullRequest{
		Table:  table,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  validators.DefaultPageLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, fmt.Sprintf("%s %q", app.MsgInvalidLimit, raw), http.StatusBadRequest)
			return
		}
		req.Limit = limit
	}

	page, err := h.services.SyncService.Pull(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Msg("pull failed")
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, page, http.StatusOK)
}

// fetch handles POST /api/sync/{table}/fetch and answers with a JSON array
// of the server copies that exist. Unknown ids are omitted.
func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	table, userID, ok := h.syncScope(w, r)
	if !ok {
		return
	}

	var req models.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.fetch").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}
	if err := bindTable(&req.Table, table); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.services.SyncService.Fetch(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.fetch").Msg("fetch failed")
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []models.SyncableRecord{}
	}

	utils.WriteJSON(w, records, http.StatusOK)
}

// syncScope resolves the {table} path parameter and the authenticated user.
// On failure it writes the response and reports false.
func (h *Handler) syncScope(w http.ResponseWriter, r *http.Request) (models.TableName, int64, bool) {
	log := logger.FromRequest(r)

	table, err := models.ParseTableName(chi.URLParam(r, "table"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.syncScope").Send()
		writeServiceError(w, err)
		return "", 0, false
	}

	userID, found := utils.GetUserIDFromContext(r.Context())
	if !found {
		log.Error().Str("func", "*Handler.syncScope").Msg("no user ID was given")
		utils.WriteError(w, app.MsgNoUserIDProvided, http.StatusUnauthorized)
		return "", 0, false
	}

	return table, userID, true
}

func bindTable(dst *models.TableName, table models.TableName) error {
	if *dst != "" && *dst != table {
		return fmt.Errorf("%w: body names %q, path names %q", models.ErrUnknownTable, *dst, table)
	}
	*dst = table
	return nil
}
