package model

import "time"

// -------------------- SUBMISSION REQUEST --------------------

// SubmissionRequest is the untrusted JSON body posted by the contact form.
// Optional fields are pointers so "absent" and "empty" stay distinguishable.
type SubmissionRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone,omitempty"`
	BusinessName  string  `json:"businessName"`
	BusinessType  string  `json:"businessType"`
	Message       string  `json:"message"`
	Honeypot      *string `json:"honeypot,omitempty"`
	FormStartTime *int64  `json:"formStartTime,omitempty"` // epoch milliseconds, set by the form on mount
}

// PhoneValue returns the phone field or "" when absent.
func (r *SubmissionRequest) PhoneValue() string {
	if r.Phone == nil {
		return ""
	}
	return *r.Phone
}

// HoneypotValue returns the honeypot field or "" when absent.
func (r *SubmissionRequest) HoneypotValue() string {
	if r.Honeypot == nil {
		return ""
	}
	return *r.Honeypot
}

// -------------------- SANITIZED SUBMISSION --------------------

// Submission is a fully sanitized, validated contact inquiry ready to relay.
type Submission struct {
	ID           string    `json:"id"` // UUID, log/event correlation only
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	BusinessName string    `json:"business_name"`
	BusinessType string    `json:"business_type"`
	Message      string    `json:"message"`
	ReceivedAt   time.Time `json:"received_at"`
}

// -------------------- RESPONSE --------------------

// SubmissionResponse is the client-facing outcome of a submission. Bot-detected
// submissions carry the same shape and message as a genuine success.
type SubmissionResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// -------------------- LEAD EVENT --------------------

// LeadEvent is published to Kafka after a submission has been relayed. It never
// includes the relay credential.
type LeadEvent struct {
	SubmissionID string    `json:"submission_id"`
	BusinessName string    `json:"business_name"`
	BusinessType string    `json:"business_type"`
	ReceivedAt   time.Time `json:"received_at"`
	Source       string    `json:"source"`
}
