package taskstatus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client reads task status from a data portal's action API.
type Client struct {
	httpClient *http.Client
}

type showRequest struct {
	EntityID string `json:"entity_id"`
	TaskType string `json:"task_type"`
	Key      string `json:"key"`
}

type showResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Value       string `json:"value"`
		Error       string `json:"error"`
		LastUpdated string `json:"last_updated"`
	} `json:"result"`
	Error struct {
		Type    string `json:"__type"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusValue is the JSON document the archiver stores in the task status value.
type statusValue struct {
	Reason       string `json:"reason"`
	FailureCount int    `json:"failure_count"`
	FirstFailure string `json:"first_failure"`
	LastSuccess  string `json:"last_success"`
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LatestStatus returns nil when the portal has no status for the resource.
func (c *Client) LatestStatus(ctx context.Context, tc TaskContext, resourceID string) (*Record, error) {
	if tc.SiteURL == "" {
		return nil, fmt.Errorf("site URL is not configured")
	}

	jsonBody, err := json.Marshal(showRequest{EntityID: resourceID, TaskType: TaskType, Key: "status"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(tc.SiteURL, "/") + "/api/action/task_status_show"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := apiKey(tc); key != "" {
		req.Header.Set("Authorization", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query task status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("task status API error %d: %s", resp.StatusCode, string(body))
	}

	var result showResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode task status response: %w", err)
	}
	if !result.Success {
		if result.Error.Type == "Not Found Error" {
			return nil, nil
		}
		return nil, fmt.Errorf("task status API failed: %s", result.Error.Message)
	}

	return parseStatus(result.Result.Value, result.Result.Error)
}

func apiKey(tc TaskContext) string {
	if tc.SiteUserAPIKey != "" {
		return tc.SiteUserAPIKey
	}
	return tc.APIKey
}

func parseStatus(value, errorDetails string) (*Record, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var v statusValue
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return nil, fmt.Errorf("failed to decode task status value: %w", err)
	}

	rec := &Record{
		Reason:    v.Reason,
		Attempts:  v.FailureCount,
		LastError: errorDetails,
	}

	if v.LastSuccess != "" {
		t, err := parseTimestamp(v.LastSuccess)
		if err != nil {
			return nil, err
		}
		rec.LastSuccessAt = &t
	}
	if v.FirstFailure != "" {
		t, err := parseTimestamp(v.FirstFailure)
		if err != nil {
			return nil, err
		}
		rec.FirstAttemptedAt = t
	}

	if rec.Attempts == 0 {
		if rec.LastSuccessAt == nil {
			return nil, nil
		}
		rec.Success = true
	}
	return rec, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
