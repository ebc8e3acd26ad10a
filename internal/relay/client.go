package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"contact-service/internal/config"
	"contact-service/internal/model"
)

// ErrNotConfigured signals that no access key is present in the environment.
// Callers must translate it to a generic configuration error; the missing
// variable name stays out of every response body.
var ErrNotConfigured = errors.New("relay access key is not configured")

// Sender delivers a sanitized submission to the transactional-email relay.
type Sender interface {
	Send(ctx context.Context, sub *model.Submission) error
}

// payload is the Web3Forms submit body.
type payload struct {
	AccessKey    string `json:"access_key"`
	Subject      string `json:"subject"`
	FromName     string `json:"from_name"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Message      string `json:"message"`
}

type relayResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client posts submissions to the Web3Forms API.
type Client struct {
	endpoint   string
	accessKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a relay client with a bounded request timeout.
func NewClient(cfg config.RelayConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		accessKey:  cfg.AccessKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send implements Sender. Any transport or upstream failure comes back as an
// error whose detail is safe to log but never to return to a client.
func (c *Client) Send(ctx context.Context, sub *model.Submission) error {
	if c.accessKey == "" {
		return ErrNotConfigured
	}

	phone := sub.Phone
	if phone == "" {
		phone = "Not provided"
	}

	body, err := json.Marshal(payload{
		AccessKey:    c.accessKey,
		Subject:      fmt.Sprintf("New LaunchPad Inquiry from %s", sub.BusinessName),
		FromName:     sub.Name,
		Name:         sub.Name,
		Email:        sub.Email,
		Phone:        phone,
		BusinessName: sub.BusinessName,
		BusinessType: sub.BusinessType,
		Message:      sub.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal relay payload: %w", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("failed to read relay response: %w", err)
	}

	var result relayResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("unparsable relay response: status=%d body=%s",
			res.StatusCode, strings.TrimSpace(string(raw)))
	}

	if !result.Success {
		return fmt.Errorf("relay rejected submission: status=%d message=%s",
			res.StatusCode, result.Message)
	}

	c.logger.Debug("submission relayed",
		zap.String("submission_id", sub.ID),
		zap.Int("status", res.StatusCode))
	return nil
}
