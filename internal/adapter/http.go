package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/models"
)

type httpRemoteAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteAdapter constructs an HTTP/REST implementation of
// [RemoteAdapter]. It normalises and validates the base URL from
// adapterCfg.Address, configures the underlying HTTP client with the
// resolved base URL and request timeout, and seeds the bearer token from
// appCfg.APIToken.
//
// Returns an error if adapterCfg.Address is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	h := &httpRemoteAdapter{client: client, logger: logger}
	h.SetToken(appCfg.APIToken)

	return h, nil
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

// SetToken implements [RemoteAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpRemoteAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpRemoteAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// List implements [RemoteAdapter]. It GETs /api/entities, optionally
// filtered server-side with an updated_since query parameter, and decodes
// the nested row payload back into entities.
func (h *httpRemoteAdapter) List(ctx context.Context, since *time.Time) ([]models.Entity, error) {
	req := h.authedRequest(ctx)
	if since != nil {
		req.SetQueryParam("updated_since", since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Get("/api/entities")
	if err != nil {
		return nil, fmt.Errorf("list entities request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var rows []models.EntityRow
	if err = json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("decode list entities response: %w", err)
	}

	entities := make([]models.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, models.FromWire(row))
	}

	return entities, nil
}

// Create implements [RemoteAdapter]. It POSTs the entity's wire shape to
// POST /api/entities and returns the server copy, whose id replaces any
// locally-minted one.
func (h *httpRemoteAdapter) Create(ctx context.Context, entity models.Entity) (models.Entity, error) {
	var row models.EntityRow

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ToWire(entity)).
		SetResult(&row).
		Post("/api/entities")
	if err != nil {
		return models.Entity{}, fmt.Errorf("create entity request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Entity{}, err
	}

	return models.FromWire(row), nil
}

// Update implements [RemoteAdapter]. It PUTs the entity's wire shape to
// PUT /api/entities/{id} and returns the stored server copy. Returns
// [ErrNotFound] (wrapped) on HTTP 404.
func (h *httpRemoteAdapter) Update(ctx context.Context, entity models.Entity) (models.Entity, error) {
	var row models.EntityRow

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ToWire(entity)).
		SetResult(&row).
		Put("/api/entities/" + url.PathEscape(entity.ID))
	if err != nil {
		return models.Entity{}, fmt.Errorf("update entity request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Entity{}, err
	}

	return models.FromWire(row), nil
}

// Delete implements [RemoteAdapter]. It sends DELETE /api/entities/{id}.
// Returns [ErrNotFound] (wrapped) on HTTP 404.
func (h *httpRemoteAdapter) Delete(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/entities/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete entity request: %w", err)
	}

	return mapHTTPError(resp)
}

// CreateTemplate implements [RemoteAdapter]. It POSTs the template's wire
// shape to POST /api/templates and returns the server copy.
func (h *httpRemoteAdapter) CreateTemplate(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error) {
	var row models.TemplateRow

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.TemplateToWire(tpl)).
		SetResult(&row).
		Post("/api/templates")
	if err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("create template request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WorkoutTemplate{}, err
	}

	return models.TemplateFromWire(row), nil
}

// UpdateTemplate implements [RemoteAdapter]. It PUTs the template's wire
// shape to PUT /api/templates/{id}.
func (h *httpRemoteAdapter) UpdateTemplate(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error) {
	var row models.TemplateRow

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.TemplateToWire(tpl)).
		SetResult(&row).
		Put("/api/templates/" + url.PathEscape(tpl.ID))
	if err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("update template request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WorkoutTemplate{}, err
	}

	return models.TemplateFromWire(row), nil
}

// DeleteTemplate implements [RemoteAdapter]. It sends
// DELETE /api/templates/{id}.
func (h *httpRemoteAdapter) DeleteTemplate(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/templates/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete template request: %w", err)
	}

	return mapHTTPError(resp)
}

// Ping implements [RemoteAdapter]. It GETs the unauthenticated health
// endpoint; any transport failure or non-2xx response counts as offline.
func (h *httpRemoteAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
