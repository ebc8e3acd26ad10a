package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contact-service/internal/config"
	"contact-service/internal/model"
)

func testSubmission() *model.Submission {
	return &model.Submission{
		ID:           "sub-1",
		Name:         "Asha",
		Email:        "asha@example.com",
		BusinessName: "Asha Pickles",
		BusinessType: "Pickles & Preserves",
		Message:      "Need funding",
		ReceivedAt:   time.Now(),
	}
}

func newTestClient(endpoint, key string) *Client {
	return NewClient(config.RelayConfig{
		Endpoint:  endpoint,
		AccessKey: key,
		Timeout:   2 * time.Second,
	}, zap.NewNop())
}

func TestSend_NotConfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "")
	err := client.Send(context.Background(), testSubmission())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called, "no request may be sent without a key")
}

func TestSend_PayloadShape(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "test-key")
	require.NoError(t, client.Send(context.Background(), testSubmission()))

	assert.Equal(t, "test-key", got["access_key"])
	assert.Equal(t, "New LaunchPad Inquiry from Asha Pickles", got["subject"])
	assert.Equal(t, "Asha", got["from_name"])
	assert.Equal(t, "asha@example.com", got["email"])
	assert.Equal(t, "Not provided", got["phone"], "empty phone is labelled, not blank")
	assert.Equal(t, "Pickles & Preserves", got["business_type"])
}

func TestSend_PhonePassedThrough(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	sub := testSubmission()
	sub.Phone = "+91 98765 43210"

	client := newTestClient(srv.URL, "test-key")
	require.NoError(t, client.Send(context.Background(), sub))
	assert.Equal(t, "+91 98765 43210", got["phone"])
}

func TestSend_UpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid access key"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "bad-key")
	err := client.Send(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay rejected submission")
}

func TestSend_UnparsableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "test-key")
	err := client.Send(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparsable relay response")
}

func TestSend_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := newTestClient(srv.URL, "test-key")
	err := client.Send(context.Background(), testSubmission())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
