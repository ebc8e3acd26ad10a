package service

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-service/internal/model"
	"contact-service/internal/ratelimit"
	"contact-service/internal/relay"
	"contact-service/internal/util"
)

var (
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrNotConfigured = errors.New("relay is not configured")
	ErrRelayFailed   = errors.New("relay delivery failed")
)

// ValidationError is a client-fixable rejection with a safe, specific message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// User-facing messages. Validation and rate-limit messages are specific;
// configuration and upstream failures stay generic so nothing about the
// server's internals (least of all which secret is missing) leaks out.
const (
	MsgMissingFields = "Please fill in all required fields."
	MsgInvalidEmail  = "Please enter a valid email address."
	MsgInvalidPhone  = "Please enter a valid phone number."
	MsgRateLimited   = "Too many requests. Please try again later."
	MsgSubmitted     = "Form submitted successfully!"
	MsgConfigError   = "Server configuration error. Please try again later."
	MsgRelayError    = "Failed to send your message. Please try again later."
)

const (
	// Submissions completed faster than this are treated as automated.
	minFillTime = 3 * time.Second

	maxNameLen         = 100
	maxEmailLen        = 254
	maxPhoneLen        = 30
	maxBusinessNameLen = 200
	maxBusinessTypeLen = 100
	maxMessageLen      = 1000
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
)

// LeadPublisher emits a marketing lead event after a successful relay.
type LeadPublisher interface {
	PublishLeadEvent(ctx context.Context, event model.LeadEvent) error
}

// ContactService runs the submission pipeline: rate limit, bot check,
// sanitize, validate, relay. Stages execute in that order and each one
// short-circuits, so bots never see field-level validation detail and nothing
// reaches the relay without passing every local check.
type ContactService struct {
	store     ratelimit.Store
	sender    relay.Sender
	publisher LeadPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewContactService creates the pipeline. publisher may be nil.
func NewContactService(store ratelimit.Store, sender relay.Sender, publisher LeadPublisher, logger *zap.Logger) *ContactService {
	return &ContactService{
		store:     store,
		sender:    sender,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessSubmission handles one contact-form submission from the given client
// identifier. Bot-classified submissions return the same response value as a
// genuine success, with no error and no relay call.
func (s *ContactService) ProcessSubmission(ctx context.Context, clientID string, req *model.SubmissionRequest) (*model.SubmissionResponse, error) {
	now := s.now()

	// 1. Rate limit. A store failure has already been logged by the store and
	// fails open; rejected attempts are never recorded.
	allowed, count, err := s.store.Allow(ctx, clientID, now)
	if err == nil && !allowed {
		s.logger.Warn("submission rate limited",
			zap.String("client_id", clientID),
			zap.Int("count", count))
		return nil, ErrRateLimited
	}

	// 2. Bot detection, before validation so automated senders get no
	// field-level feedback.
	if s.isBot(req, now) {
		s.logger.Info("bot submission suppressed",
			zap.String("client_id", clientID),
			zap.Bool("honeypot", req.HoneypotValue() != ""))
		return &model.SubmissionResponse{Success: true, Message: MsgSubmitted}, nil
	}

	// 3. Sanitize.
	sub := s.sanitize(req, now)

	// 4. Validate.
	if err := validate(sub); err != nil {
		return nil, err
	}

	// 5. Relay.
	if err := s.sender.Send(ctx, sub); err != nil {
		if errors.Is(err, relay.ErrNotConfigured) {
			s.logger.Error("submission rejected: relay not configured",
				zap.String("submission_id", sub.ID))
			return nil, ErrNotConfigured
		}
		// Upstream detail is logged here and nowhere else.
		s.logger.Error("relay delivery failed",
			zap.String("submission_id", sub.ID),
			zap.Error(err))
		return nil, ErrRelayFailed
	}

	s.logger.Info("submission relayed",
		zap.String("submission_id", sub.ID),
		zap.String("client_id", clientID),
		zap.String("business_type", sub.BusinessType))

	s.publishLead(sub)

	return &model.SubmissionResponse{Success: true, Message: MsgSubmitted}, nil
}

// isBot applies the honeypot and timing heuristics.
func (s *ContactService) isBot(req *model.SubmissionRequest, now time.Time) bool {
	if req.HoneypotValue() != "" {
		return true
	}
	if req.FormStartTime != nil {
		elapsed := now.UnixMilli() - *req.FormStartTime
		if elapsed < minFillTime.Milliseconds() {
			return true
		}
	}
	return false
}

func (s *ContactService) sanitize(req *model.SubmissionRequest, now time.Time) *model.Submission {
	return &model.Submission{
		ID:           uuid.NewString(),
		Name:         util.SanitizeText(req.Name, maxNameLen),
		Email:        util.SanitizeText(req.Email, maxEmailLen),
		Phone:        util.SanitizeText(req.PhoneValue(), maxPhoneLen),
		BusinessName: util.SanitizeText(req.BusinessName, maxBusinessNameLen),
		BusinessType: util.SanitizeText(req.BusinessType, maxBusinessTypeLen),
		Message:      util.SanitizeText(req.Message, maxMessageLen),
		ReceivedAt:   now,
	}
}

func validate(sub *model.Submission) error {
	if sub.Name == "" || sub.Email == "" || sub.BusinessName == "" || sub.BusinessType == "" || sub.Message == "" {
		return &ValidationError{Message: MsgMissingFields}
	}
	if !emailRegex.MatchString(sub.Email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	if sub.Phone != "" {
		if !phoneRegex.MatchString(sub.Phone) || utf8.RuneCountInString(sub.Phone) < 10 {
			return &ValidationError{Message: MsgInvalidPhone}
		}
	}
	return nil
}

// publishLead emits the lead event without blocking or affecting the response.
func (s *ContactService) publishLead(sub *model.Submission) {
	if s.publisher == nil {
		return
	}

	event := model.LeadEvent{
		SubmissionID: sub.ID,
		BusinessName: sub.BusinessName,
		BusinessType: sub.BusinessType,
		ReceivedAt:   sub.ReceivedAt,
		Source:       "contact-form",
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
			s.logger.Warn("lead event publish failed",
				zap.String("submission_id", event.SubmissionID),
				zap.Error(err))
		}
	}()
}
