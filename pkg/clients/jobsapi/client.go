// Package jobsapi reads live work logs and member profiles from the volunteer
// app's backend. Both are exposed as PostgREST RPC functions guarded by an
// organisation API key.
package jobsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/genf/workreport/pkg/core/ingest"
	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/utils/logging"
)

const (
	rpcJobLogs  = "get_job_logs_with_api_key"
	rpcProfiles = "get_profiles_with_api_key"

	defaultTimeout = 30 * time.Second
)

// jobLogHeaders are the job log fields read from the feed. An empty response
// still yields a record set carrying these columns.
var jobLogHeaders = []string{
	"id",
	"worker_id",
	"worker_first_name",
	"worker_last_name",
	"work_type",
	"date_completed",
	"hours_worked",
	"units_completed",
	"hourly_rate",
	"comments",
	"work_leader",
	"reviewed",
	"season",
}

// APIError is a non-2xx response from the backend
type APIError struct {
	Function string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Function, e.Status, e.Body)
}

// Client calls the RPC endpoints
type Client struct {
	baseURL    string
	anonKey    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the backend at baseURL. The anon key authorises the
// request itself; the API key identifies the organisation to the RPC.
func New(baseURL, anonKey, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("jobs api url is empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("jobs api key is empty")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c, nil
}

// JobLogs returns the work logs completed within r. A zero range fetches everything.
func (c *Client) JobLogs(ctx context.Context, r period.DateRange) (model.RecordSet, error) {
	params := map[string]any{"p_api_key": c.apiKey, "p_from_date": nil, "p_to_date": nil}
	if !r.IsZero() {
		params["p_from_date"] = r.From.Format(period.DateLayout)
		params["p_to_date"] = r.To.Format(period.DateLayout)
	}

	var rows []map[string]any
	if err := c.call(ctx, rpcJobLogs, params, &rows); err != nil {
		return model.RecordSet{}, err
	}

	table := make([][]any, len(rows))
	for i, row := range rows {
		values := make([]any, len(jobLogHeaders))
		for j, h := range jobLogHeaders {
			values[j] = row[h]
		}
		table[i] = values
	}

	rs, err := ingest.FromTable(jobLogHeaders, table)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to decode job logs: %w", err)
	}
	c.logger.Debug("Fetched job logs",
		zap.String(logging.FieldSource, rpcJobLogs),
		zap.Int(logging.FieldRows, rs.Len()))
	return rs, nil
}

type profile struct {
	ID                string  `json:"id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Role              string  `json:"role"`
	DateOfBirth       *string `json:"date_of_birth"`
	BankAccountNumber any     `json:"bank_account_number"`
	CustomID          *int    `json:"custom_id"`
	Email             string  `json:"email"`
}

// Profiles returns every member profile of the organisation
func (c *Client) Profiles(ctx context.Context) ([]model.Member, error) {
	var rows []profile
	if err := c.call(ctx, rpcProfiles, map[string]any{"p_api_key": c.apiKey}, &rows); err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(rows))
	for _, p := range rows {
		m := model.Member{
			ID:        p.ID,
			FirstName: strings.TrimSpace(p.FirstName),
			LastName:  strings.TrimSpace(p.LastName),
			Email:     strings.TrimSpace(p.Email),
			Role:      p.Role,
			CustomID:  p.CustomID,
		}
		if bank, ok := ingest.BankAccount(p.BankAccountNumber); ok {
			m.BankAccountNumber = bank
		}
		if p.DateOfBirth != nil {
			if dob, ok, err := ingest.Date(*p.DateOfBirth); err == nil && ok {
				m.DateOfBirth = &dob
			} else if err != nil {
				c.logger.Warn("Ignoring unreadable date of birth",
					zap.String(logging.FieldRecordID, p.ID), zap.Error(err))
			}
		}
		members = append(members, m)
	}
	c.logger.Debug("Fetched profiles",
		zap.String(logging.FieldSource, rpcProfiles),
		zap.Int(logging.FieldRows, len(members)))
	return members, nil
}

func (c *Client) call(ctx context.Context, function string, params map[string]any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", function, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/rpc/"+function, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Function: function, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", function, err)
	}
	return nil
}
