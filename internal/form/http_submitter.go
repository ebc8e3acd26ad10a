package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contact-service/internal/model"
)

// HTTPSubmitter posts submissions to the gateway endpoint as the browser form
// would.
type HTTPSubmitter struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSubmitter creates a submitter for the given /api/contact URL.
func NewHTTPSubmitter(endpoint string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSubmitter{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit implements Submitter. Any response the gateway produced, success or
// rejection, is returned as a parsed value; only transport-level failures
// return an error.
func (s *HTTPSubmitter) Submit(ctx context.Context, req *model.SubmissionRequest) (*model.SubmissionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submission request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read submission response: %w", err)
	}

	var resp model.SubmissionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unparsable submission response: status=%d", res.StatusCode)
	}

	// A 2xx without the success flag is still a failure to the form
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		resp.Success = false
	}
	return &resp, nil
}
