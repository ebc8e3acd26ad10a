package form

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-service/internal/model"
)

func TestHTTPSubmitter_ParsesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.SubmissionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Asha", req.Name)
		require.NotNil(t, req.FormStartTime)

		json.NewEncoder(w).Encode(model.SubmissionResponse{Success: true, Message: "Form submitted successfully!"})
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, 2*time.Second)
	start := time.Now().Add(-5 * time.Second).UnixMilli()
	resp, err := s.Submit(context.Background(), &model.SubmissionRequest{Name: "Asha", FormStartTime: &start})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Form submitted successfully!", resp.Message)
}

func TestHTTPSubmitter_ParsesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.SubmissionResponse{Error: "Please enter a valid email address."})
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, 2*time.Second)
	resp, err := s.Submit(context.Background(), &model.SubmissionRequest{})

	require.NoError(t, err, "a parsed rejection is not a transport error")
	assert.False(t, resp.Success)
	assert.Equal(t, "Please enter a valid email address.", resp.Error)
}

func TestHTTPSubmitter_SuccessFlagClearedOnErrorStatus(t *testing.T) {
	// A proxy could hand back a 2xx-shaped body on a non-2xx status
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(model.SubmissionResponse{Success: true})
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, 2*time.Second)
	resp, err := s.Submit(context.Background(), &model.SubmissionRequest{})

	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestHTTPSubmitter_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second)
	_, err := s.Submit(context.Background(), &model.SubmissionRequest{})
	assert.Error(t, err)
}
