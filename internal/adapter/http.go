package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/go-resty/resty/v2"
)

type httpRemoteAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteAdapter constructs an HTTP/REST implementation of
// [RemoteAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and applies the request timeout to every call.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	a := &httpRemoteAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: logger,
	}
	a.SetToken(appCfg.Token)

	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteAdapter].
func (h *httpRemoteAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteAdapter].
func (h *httpRemoteAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Push implements [RemoteAdapter]. It POSTs the batch to
// /api/sync/{table}/push with the body's content hash. Collections missing from the response are
// returned empty, never nil.
func (h *httpRemoteAdapter) Push(ctx context.Context, req models.PushRequest) (models.TableBatchResult, error) {
	if !req.Table.Valid() {
		return models.TableBatchResult{}, fmt.Errorf("%w: %q", models.ErrUnknownTable, req.Table)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.TableBatchResult{}, fmt.Errorf("encode push request: %w", err)
	}

	var result models.TableBatchResult
	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(utils.ContentHashHeader, utils.BodyHash(body)).
		SetBody(body).
		SetResult(&result).
		SetPathParam("table", string(req.Table)).
		Post("/api/sync/{table}/push")
	if err != nil {
		return models.TableBatchResult{}, fmt.Errorf("%w: push request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TableBatchResult{}, err
	}

	result = normalizeBatchResult(result)
	h.logger.Debug().
		Str("func", "httpRemoteAdapter.Push").
		Str("table", string(req.Table)).
		Int("records", len(req.Records)).
		Int("synced", len(result.SyncedIDs)).
		Int("conflicts", len(result.ConflictIDs)).
		Int("errors", len(result.ErrorMap)).
		Msg("batch pushed")
	return result, nil
}

// Pull implements [RemoteAdapter]. It GETs /api/sync/{table}/pull with the
// cursor and limit as query parameters.
func (h *httpRemoteAdapter) Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	if !req.Table.Valid() {
		return models.PullResponse{}, fmt.Errorf("%w: %q", models.ErrUnknownTable, req.Table)
	}

	var page models.PullResponse
	request := h.authorized(ctx).
		SetResult(&page).
		SetPathParam("table", string(req.Table)).
		SetQueryParam("cursor", req.Cursor)
	if req.Limit > 0 {
		request.SetQueryParam("limit", strconv.Itoa(req.Limit))
	}

	resp, err := request.Get("/api/sync/{table}/pull")
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("%w: pull request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	for i := range page.Records {
		page.Records[i].Table = req.Table
	}
	return page, nil
}

// Fetch implements [RemoteAdapter]. It POSTs the ids to
// /api/sync/{table}/fetch.
func (h *httpRemoteAdapter) Fetch(ctx context.Context, req models.FetchRequest) ([]models.SyncableRecord, error) {
	if !req.Table.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTable, req.Table)
	}
	if len(req.IDs) == 0 {
		return []models.SyncableRecord{}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode fetch request: %w", err)
	}

	records := make([]models.SyncableRecord, 0, len(req.IDs))
	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(utils.ContentHashHeader, utils.BodyHash(body)).
		SetBody(body).
		SetResult(&records).
		SetPathParam("table", string(req.Table)).
		Post("/api/sync/{table}/fetch")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	for i := range records {
		records[i].Table = req.Table
	}
	return records, nil
}

func (h *httpRemoteAdapter) authorized(ctx context.Context) *resty.Request {
	request := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		request.SetAuthToken(token)
	}
	return request
}

func normalizeBatchResult(result models.TableBatchResult) models.TableBatchResult {
	if result.SyncedIDs == nil {
		result.SyncedIDs = make([]string, 0)
	}
	if result.ConflictIDs == nil {
		result.ConflictIDs = make([]string, 0)
	}
	if result.ErrorMap == nil {
		result.ErrorMap = make(map[string]string)
	}
	if result.ErrorCodes == nil {
		result.ErrorCodes = make(map[string]models.ErrorCode)
	}
	if result.Versions == nil {
		result.Versions = make(map[string]int64)
	}
	return result
}
