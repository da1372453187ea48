package filesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CallRecorder counts outbound calls to the hosted API. Satisfied by the
// metrics registry; may be nil.
type CallRecorder interface {
	RecordUpstreamCall()
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to the hosted file search / generation API. All retrieval and
// generation is delegated to it; the client performs no retries of its own.
type Client struct {
	cfg        Config
	httpClient *http.Client
	recorder   CallRecorder
}

func NewClient(cfg Config, recorder CallRecorder) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		recorder:   recorder,
	}
}

func (c *Client) CreateStore(ctx context.Context, displayName string) (*Store, error) {
	var store Store
	err := c.doJSON(ctx, http.MethodPost, "/fileSearchStores", nil,
		map[string]any{"display_name": displayName}, &store)
	if err != nil {
		return nil, fmt.Errorf("create store failed: %w", err)
	}
	if store.DisplayName == "" {
		store.DisplayName = displayName
	}
	return &store, nil
}

func (c *Client) GetStore(ctx context.Context, storeID string) (*Store, error) {
	var store Store
	if err := c.doJSON(ctx, http.MethodGet, "/"+storeID, nil, nil, &store); err != nil {
		return nil, fmt.Errorf("get store failed: %w", err)
	}
	return &store, nil
}

// DeleteStore force-deletes the store and every file it contains.
func (c *Client) DeleteStore(ctx context.Context, storeID string) error {
	query := url.Values{"force": {"true"}}
	if err := c.doJSON(ctx, http.MethodDelete, "/"+storeID, query, nil, nil); err != nil {
		return fmt.Errorf("delete store failed: %w", err)
	}
	return nil
}

// UploadFile streams a document into the store and returns the ingestion
// operation to poll.
func (c *Client) UploadFile(ctx context.Context, storeID, filename string, r io.Reader) (*Operation, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload form failed: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy upload payload failed: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close upload form failed: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/"+storeID+":uploadFile", nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var op Operation
	if err := c.send(req, &op); err != nil {
		return nil, fmt.Errorf("upload file failed: %w", err)
	}
	return &op, nil
}

func (c *Client) GetOperation(ctx context.Context, operationName string) (*Operation, error) {
	var op Operation
	if err := c.doJSON(ctx, http.MethodGet, "/"+operationName, nil, nil, &op); err != nil {
		return nil, fmt.Errorf("get operation failed: %w", err)
	}
	return &op, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/"+fileID, nil, nil, nil); err != nil {
		return fmt.Errorf("delete file failed: %w", err)
	}
	return nil
}

// Query asks a question against the store's documents and returns the
// grounded answer.
func (c *Client) Query(ctx context.Context, storeID, query string) (*QueryResult, error) {
	var result QueryResult
	err := c.doJSON(ctx, http.MethodPost, "/"+storeID+":query", nil,
		map[string]any{"query": query, "model": c.cfg.Model}, &result)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &result, nil
}

func (c *Client) Summarize(ctx context.Context, storeID, summaryType string) (*Summary, error) {
	var summary Summary
	err := c.doJSON(ctx, http.MethodPost, "/"+storeID+":summarize", nil,
		map[string]any{"summary_type": summaryType, "model": c.cfg.Model}, &summary)
	if err != nil {
		return nil, fmt.Errorf("summarize failed: %w", err)
	}
	if summary.SummaryType == "" {
		summary.SummaryType = summaryType
	}
	return &summary, nil
}

func (c *Client) GenerateTimeline(ctx context.Context, storeID string, maxEvents int) (*Timeline, error) {
	var timeline Timeline
	err := c.doJSON(ctx, http.MethodPost, "/"+storeID+":generateTimeline", nil,
		map[string]any{"max_events": maxEvents, "model": c.cfg.Model}, &timeline)
	if err != nil {
		return nil, fmt.Errorf("generate timeline failed: %w", err)
	}
	return &timeline, nil
}

func (c *Client) GenerateBriefing(ctx context.Context, storeID, style string, maxSections int) (*Briefing, error) {
	var briefing Briefing
	err := c.doJSON(ctx, http.MethodPost, "/"+storeID+":generateBriefing", nil,
		map[string]any{"style": style, "max_sections": maxSections, "model": c.cfg.Model}, &briefing)
	if err != nil {
		return nil, fmt.Errorf("generate briefing failed: %w", err)
	}
	return &briefing, nil
}

// GenerateScript produces a two-host dialogue script over the store's
// documents, sized to roughly durationMinutes of speech.
func (c *Client) GenerateScript(ctx context.Context, storeID, style string, durationMinutes int) (*DialogueScript, error) {
	var script DialogueScript
	err := c.doJSON(ctx, http.MethodPost, "/"+storeID+":generateScript", nil,
		map[string]any{"style": style, "duration_minutes": durationMinutes, "model": c.cfg.Model}, &script)
	if err != nil {
		return nil, fmt.Errorf("generate script failed: %w", err)
	}
	return &script, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	if c.recorder != nil {
		c.recorder.RecordUpstreamCall()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response failed: %w", err)
	}
	return nil
}
