package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"contact-service/internal/model"
	"contact-service/internal/service"
	"contact-service/internal/util"
)

// unknownClient buckets every request that carries no forwarding headers.
const unknownClient = "unknown"

// ContactHandler exposes the submission pipeline over HTTP.
type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers the contact routes.
func (h *ContactHandler) RegisterRoutes(router chi.Router) {
	router.Post("/contact", h.Submit)
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	// Whatever goes wrong below, the client sees a generic message and
	// never a stack trace.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in submission handler",
				zap.Any("panic", rec))
			h.respondWithJSON(w, http.StatusInternalServerError,
				model.SubmissionResponse{Error: service.MsgRelayError})
		}
	}()

	clientID := clientIdentifier(r)

	var req model.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A body we cannot parse has no fields at all
		h.respondWithError(w, http.StatusBadRequest, err, service.MsgMissingFields)
		return
	}

	resp, err := h.contactService.ProcessSubmission(r.Context(), clientID, &req)
	if err != nil {
		status, message := h.mapError(err)
		h.respondWithError(w, status, err, message)
		return
	}

	h.respondWithJSON(w, http.StatusOK, resp)
	h.logger.Debug("submission handled",
		util.String("client_id", clientID),
		util.Duration("duration", time.Since(startTime)),
	)
}

// clientIdentifier extracts an IP-like identifier from forwarding headers.
// Header-less clients all share the sentinel bucket; that coarseness is
// accepted because the gateway always sits behind the site's proxy.
func clientIdentifier(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return unknownClient
}

// mapError converts a classified pipeline outcome to status and user message.
func (h *ContactHandler) mapError(err error) (int, string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, service.MsgRateLimited
	case errors.Is(err, service.ErrNotConfigured):
		return http.StatusInternalServerError, service.MsgConfigError
	default:
		return http.StatusInternalServerError, service.MsgRelayError
	}
}

// respondWithJSON sends a JSON response
func (h *ContactHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError sends an error response
func (h *ContactHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, model.SubmissionResponse{Error: message})
}
