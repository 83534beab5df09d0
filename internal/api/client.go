// Package api is the HTTP client for the climavet REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/climavet/climavet/internal/model"
	"github.com/climavet/climavet/internal/requestid"
)

// Config holds backend client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// Client performs one HTTP request per call. It never retries or caches.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "api"),
	}
}

// ListPlans returns the plan summaries for a risk.
func (c *Client) ListPlans(ctx context.Context, risk string) ([]model.PlanSummary, error) {
	q := url.Values{}
	q.Set("risk", risk)
	var plans []model.PlanSummary
	if err := c.do(ctx, http.MethodGet, "/api/disaster-plans/", q, nil, &plans); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// ListDisasterTypes returns every disaster type the backend knows.
func (c *Client) ListDisasterTypes(ctx context.Context) ([]model.DisasterType, error) {
	var types []model.DisasterType
	if err := c.do(ctx, http.MethodGet, "/api/disaster-plans/types/", nil, nil, &types); err != nil {
		return nil, fmt.Errorf("list disaster types: %w", err)
	}
	return types, nil
}

// GeneratePlan asks the backend for a plan for one disaster type.
func (c *Client) GeneratePlan(ctx context.Context, disasterTypeID int64) (*model.DisasterPlan, error) {
	q := url.Values{}
	q.Set("disaster_type", strconv.FormatInt(disasterTypeID, 10))
	var plan model.DisasterPlan
	if err := c.do(ctx, http.MethodGet, "/api/disaster-plans/plans/generate/", q, nil, &plan); err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	return &plan, nil
}

// FetchChecklists returns the checklists matching id for a clinic. The
// backend answers with a list; views use its first element.
func (c *Client) FetchChecklists(ctx context.Context, checklistID, clinicID int64) ([]model.Checklist, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(checklistID, 10))
	q.Set("clinic", strconv.FormatInt(clinicID, 10))
	var list []model.Checklist
	if err := c.do(ctx, http.MethodGet, "/api/checklists/", q, nil, &list); err != nil {
		return nil, fmt.Errorf("fetch checklist %d: %w", checklistID, err)
	}
	return list, nil
}

// GetChecklist is FetchChecklists narrowed to one checklist. It returns
// (nil, nil) when the backend has no match.
func (c *Client) GetChecklist(ctx context.Context, checklistID, clinicID int64) (*model.Checklist, error) {
	list, err := c.FetchChecklists(ctx, checklistID, clinicID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// ListChecklists returns every checklist of a clinic.
func (c *Client) ListChecklists(ctx context.Context, clinicID int64) ([]model.Checklist, error) {
	q := url.Values{}
	q.Set("clinic", strconv.FormatInt(clinicID, 10))
	var list []model.Checklist
	if err := c.do(ctx, http.MethodGet, "/api/checklists/", q, nil, &list); err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	return list, nil
}

// CreateChecklist creates a checklist and returns it as stored.
func (c *Client) CreateChecklist(ctx context.Context, in model.NewChecklist) (*model.Checklist, error) {
	var created model.Checklist
	if err := c.do(ctx, http.MethodPost, "/api/checklists/", nil, in, &created); err != nil {
		return nil, fmt.Errorf("create checklist: %w", err)
	}
	return &created, nil
}

// UpdateItem patches one checklist item and returns it as stored.
func (c *Client) UpdateItem(ctx context.Context, checklistID, itemID int64, u model.ItemUpdate) (*model.ChecklistItem, error) {
	path := fmt.Sprintf("/api/checklists/%d/items/%d/", checklistID, itemID)
	var item model.ChecklistItem
	if err := c.do(ctx, http.MethodPatch, path, nil, u, &item); err != nil {
		return nil, fmt.Errorf("update item %d: %w", itemID, err)
	}
	return &item, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	_, id := requestid.Ensure(ctx)
	req.Header.Set(requestid.Header, id)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "request_id", id, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", id,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
