// Package directory provides resilient, rate-limited access to the external
// technician/availability directory. Listing calls never fail: every error
// path logs and degrades to an empty result, preserving system availability
// over completeness.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/model"
)

// Candidate table names probed in order. The directory's schema naming is
// not guaranteed, so the configured name is tried first and these defaults
// after it; the first table that answers successfully is cached for the
// process lifetime.
var (
	defaultTechnicianTables   = []string{"Technicians", "Technician", "Team Members"}
	defaultAvailabilityTables = []string{"Availability", "Technician Availability", "Schedule"}
)

// Client lists technicians and availability records from the directory.
// Both methods degrade to an empty slice on any failure.
type Client interface {
	ListActiveTechnicians(ctx context.Context) []model.Technician
	ListAvailability(ctx context.Context, start time.Time, end *time.Time) []model.AvailabilityPeriod
}

// record is one row in the directory's response envelope.
type record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime"`
}

// listResponse is the directory's success envelope.
type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// Option configures the directory client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithClock injects the clock used for cooldown waits and the rate window.
func WithClock(clock Clock) Option {
	return func(c *httpClient) {
		c.clock = clock
	}
}

// WithLimiter injects a shared request limiter.
func WithLimiter(l *WindowLimiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	baseURL     string
	baseID      string
	apiKey      string
	http        *http.Client
	clock       Clock
	limiter     *WindowLimiter
	cooldown    time.Duration
	maxAttempts int
	configured  bool

	techCandidates  []string
	availCandidates []string

	mu         sync.Mutex
	techTable  string
	availTable string
}

// NewClient creates a directory client from configuration. Missing
// credentials leave the client constructed but unconfigured; every listing
// then returns empty immediately.
func NewClient(cfg config.DirectoryConfig, opts ...Option) Client {
	c := &httpClient{
		baseURL:     cfg.BaseURL,
		baseID:      cfg.BaseID,
		apiKey:      cfg.APIKey,
		cooldown:    time.Duration(cfg.CooldownSecs) * time.Second,
		maxAttempts: cfg.MaxAttempts,
		configured:  cfg.APIKey != "" && cfg.BaseID != "",
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		},
		techCandidates:  tableCandidates(cfg.TechnicianTable, defaultTechnicianTables),
		availCandidates: tableCandidates(cfg.AvailabilityTable, defaultAvailabilityTables),
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.airtable.com/v0"
	}
	if c.cooldown <= 0 {
		c.cooldown = 30 * time.Second
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = RealClock()
	}
	if c.limiter == nil {
		c.limiter = NewWindowLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSec)*time.Second, c.clock)
	}
	if !c.configured {
		zap.L().Warn("directory: credentials missing, operating with empty directory")
	}
	return c
}

// tableCandidates puts the configured table name (if any) ahead of the known
// defaults, deduplicated.
func tableCandidates(configured string, defaults []string) []string {
	var out []string
	seen := make(map[string]bool)
	if configured != "" {
		out = append(out, configured)
		seen[configured] = true
	}
	for _, t := range defaults {
		if !seen[t] {
			out = append(out, t)
			seen[t] = true
		}
	}
	return out
}

func (c *httpClient) ListActiveTechnicians(ctx context.Context) []model.Technician {
	formula := `{Status} = 'Active'`
	fields := []string{"Name", "Certifications", "Status"}

	records, err := c.listRecords(ctx, c.techCandidates, &c.techTable, formula, fields)
	if err != nil {
		if !eris.Is(err, ErrNotConfigured) {
			zap.L().Warn("directory: list technicians failed, returning empty set", zap.Error(err))
		}
		return nil
	}

	techs := make([]model.Technician, 0, len(records))
	for _, r := range records {
		techs = append(techs, model.Technician{
			ID:             r.ID,
			Name:           stringField(r.Fields, "Name"),
			Certifications: stringSliceField(r.Fields, "Certifications"),
			Status:         model.TechnicianActive,
		})
	}
	return techs
}

func (c *httpClient) ListAvailability(ctx context.Context, start time.Time, end *time.Time) []model.AvailabilityPeriod {
	rangeEnd := start
	if end != nil {
		rangeEnd = *end
	}
	// Overlap with [start, rangeEnd]: started by the range end, and either
	// open-ended or not finished before the range start.
	formula := fmt.Sprintf(
		`AND(NOT(IS_AFTER({Start Date}, '%s')), OR({End Date} = BLANK(), NOT(IS_BEFORE({End Date}, '%s'))))`,
		rangeEnd.Format("2006-01-02"), start.Format("2006-01-02"),
	)
	fields := []string{"Technician", "Period Type", "Start Date", "End Date"}

	records, err := c.listRecords(ctx, c.availCandidates, &c.availTable, formula, fields)
	if err != nil {
		if !eris.Is(err, ErrNotConfigured) {
			zap.L().Warn("directory: list availability failed, returning empty set", zap.Error(err))
		}
		return nil
	}

	periods := make([]model.AvailabilityPeriod, 0, len(records))
	for _, r := range records {
		startDate, ok := dateField(r.Fields, "Start Date")
		if !ok {
			zap.L().Debug("directory: availability record without start date skipped",
				zap.String("record", r.ID),
			)
			continue
		}
		p := model.AvailabilityPeriod{
			TechnicianID: linkField(r.Fields, "Technician"),
			PeriodType:   parsePeriodType(stringField(r.Fields, "Period Type")),
			StartDate:    startDate,
		}
		if endDate, ok := dateField(r.Fields, "End Date"); ok {
			p.EndDate = &endDate
		}
		periods = append(periods, p)
	}
	return periods
}

// listRecords resolves the table name (probing candidates on first use) and
// fetches every page of matching records.
func (c *httpClient) listRecords(ctx context.Context, candidates []string, cached *string, formula string, fields []string) ([]record, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	c.mu.Lock()
	table := *cached
	c.mu.Unlock()

	if table != "" {
		return c.fetchAll(ctx, table, formula, fields)
	}

	var lastErr error
	for _, candidate := range candidates {
		records, err := c.fetchAll(ctx, candidate, formula, fields)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			zap.L().Debug("directory: table probe failed",
				zap.String("table", candidate),
				zap.Error(err),
			)
			continue
		}
		c.mu.Lock()
		*cached = candidate
		c.mu.Unlock()
		zap.L().Info("directory: resolved table name", zap.String("table", candidate))
		return records, nil
	}

	if lastErr != nil {
		return nil, eris.Wrap(lastErr, ErrNoUsableTable.Error())
	}
	return nil, ErrNoUsableTable
}

// fetchAll pages through a table query until the offset cursor is exhausted.
func (c *httpClient) fetchAll(ctx context.Context, table, formula string, fields []string) ([]record, error) {
	var records []record
	offset := ""
	for {
		page, err := c.fetchPage(ctx, table, formula, fields, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// fetchPage issues one rate-limited request. A 429 answer sleeps the
// cooldown (doubling per attempt) and retries the identical request, bounded
// at maxAttempts; past the bound it surfaces ErrRateLimited.
func (c *httpClient) fetchPage(ctx context.Context, table, formula string, fields []string, offset string) (*listResponse, error) {
	q := url.Values{}
	if formula != "" {
		q.Set("filterByFormula", formula)
	}
	for _, f := range fields {
		q.Add("fields[]", f)
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	reqURL := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.baseID, url.PathEscape(table), q.Encode())

	cooldown := c.cooldown
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "directory: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "directory: request failed")
		}
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, eris.Wrap(readErr, "directory: read response body")
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt == c.maxAttempts {
				break
			}
			zap.L().Warn("directory: rate limited upstream, cooling down",
				zap.String("table", table),
				zap.Int("attempt", attempt),
				zap.Duration("cooldown", cooldown),
			)
			if err := c.clock.Sleep(ctx, cooldown); err != nil {
				return nil, err
			}
			cooldown *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, eris.Errorf("directory: status %d: %s", resp.StatusCode, string(body))
		}

		var out listResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, eris.Wrap(err, "directory: unmarshal response")
		}
		return &out, nil
	}

	return nil, eris.Wrapf(ErrRateLimited, "directory: gave up after %d attempts", c.maxAttempts)
}

// --- field parsing helpers ---

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// stringSliceField reads a multi-select array or a comma-separated string.
func stringSliceField(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range splitAndTrim(v, ",") {
			if part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// linkField reads a linked-record field, which arrives as an array of record
// ids or a bare string.
func linkField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
		return ""
	case string:
		return v
	default:
		return ""
	}
}

func dateField(fields map[string]any, key string) (time.Time, bool) {
	s, ok := fields[key].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parsePeriodType(s string) model.PeriodType {
	switch model.PeriodType(s) {
	case model.PeriodAvailable, model.PeriodUnavailable, model.PeriodBooked:
		return model.PeriodType(s)
	default:
		return model.PeriodAvailable
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
