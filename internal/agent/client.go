package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client submits benchmark requests to an agent.
type Client struct {
	// BaseURL is the agent root, e.g. "http://bench-01:8089".
	BaseURL string
	HTTP    *http.Client
}

// Run posts req to the agent and waits for the measured records. A failed
// run returns the error reported by the agent together with any records it
// measured before failing.
func (c *Client) Run(ctx context.Context, req BenchRequest) (BenchResponse, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return BenchResponse{}, fmt.Errorf("agent endpoint is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return BenchResponse{}, fmt.Errorf("marshal benchmark payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/benchmark", bytes.NewReader(payload))
	if err != nil {
		return BenchResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return BenchResponse{}, fmt.Errorf("benchmark request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return BenchResponse{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrResp
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return BenchResponse{Records: errResp.Records}, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return BenchResponse{}, fmt.Errorf("benchmark request failed with status %d: %s", resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	var out BenchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return BenchResponse{}, fmt.Errorf("benchmark response is not valid JSON: %w", err)
	}
	return out, nil
}
