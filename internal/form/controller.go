package form

import (
	"context"
	"time"

	"contact-service/internal/model"
)

// Messages shown by the form itself, mirroring the site's copy.
const (
	msgMissingFields = "Please fill in all required fields."
	msgGenericError  = "Something went wrong. Please try again."
	msgNetworkError  = "Network error. Please check your connection and try again."
)

// Submitter delivers a submission to the gateway and returns its parsed
// response. A nil response with an error means the request never completed
// (network/transport failure).
type Submitter interface {
	Submit(ctx context.Context, req *model.SubmissionRequest) (*model.SubmissionResponse, error)
}

// Controller drives one contact-form instance: it owns the field values, the
// state machine, and the start timestamp the gateway uses for its timing
// heuristic. It is single-threaded by contract, like the form it models.
type Controller struct {
	machine   *Machine
	fields    Fields
	submitter Submitter
	startedAt time.Time
	now       func() time.Time
}

// NewController creates a controller and records the mount timestamp.
func NewController(submitter Submitter) *Controller {
	c := &Controller{
		machine:   NewMachine(),
		submitter: submitter,
		now:       time.Now,
	}
	c.startedAt = c.now()
	return c
}

// State returns the current submission state.
func (c *Controller) State() State {
	return c.machine.State()
}

// Failure returns the last failure message, or "".
func (c *Controller) Failure() string {
	return c.machine.Failure()
}

// Fields returns a copy of the current field values.
func (c *Controller) Fields() Fields {
	return c.fields
}

// SetFields replaces the field values. Edits are local; nothing is sent
// before Submit.
func (c *Controller) SetFields(f Fields) {
	c.fields = f
}

// Submit runs one submission round trip and returns the resulting state.
// While a submission is in flight further calls are suppressed and return
// StateSubmitting unchanged.
func (c *Controller) Submit(ctx context.Context) State {
	if !c.machine.Begin() {
		return c.machine.State()
	}

	if len(c.fields.MissingRequired()) > 0 {
		c.machine.Fail(msgMissingFields)
		return c.machine.State()
	}

	resp, err := c.submitter.Submit(ctx, c.buildRequest())
	switch {
	case err != nil:
		c.machine.Fail(msgNetworkError)
	case resp.Success:
		c.machine.Succeed()
		c.fields = Fields{}
		c.startedAt = c.now()
	case resp.Error != "":
		c.machine.Fail(resp.Error)
	default:
		c.machine.Fail(msgGenericError)
	}
	return c.machine.State()
}

// Backdate shifts the recorded mount timestamp into the past, for drivers
// that replay a form filled before the controller existed.
func (c *Controller) Backdate(d time.Duration) {
	c.startedAt = c.startedAt.Add(-d)
}

// Reset clears a terminal state back to Idle for another message.
func (c *Controller) Reset() bool {
	return c.machine.Reset()
}

func (c *Controller) buildRequest() *model.SubmissionRequest {
	start := c.startedAt.UnixMilli()
	req := &model.SubmissionRequest{
		Name:          c.fields.Name,
		Email:         c.fields.Email,
		BusinessName:  c.fields.BusinessName,
		BusinessType:  c.fields.BusinessType,
		Message:       c.fields.Message,
		FormStartTime: &start,
	}
	if c.fields.Phone != "" {
		phone := c.fields.Phone
		req.Phone = &phone
	}
	if c.fields.Honeypot != "" {
		hp := c.fields.Honeypot
		req.Honeypot = &hp
	}
	return req
}
