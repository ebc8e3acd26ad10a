package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.State())

	assert.True(t, m.Begin())
	assert.Equal(t, StateSubmitting, m.State())

	assert.True(t, m.Succeed())
	assert.Equal(t, StateSubmitted, m.State())

	assert.True(t, m.Reset())
	assert.Equal(t, StateIdle, m.State())
}

func TestMachine_FailurePathAllowsRetry(t *testing.T) {
	m := NewMachine()
	m.Begin()
	assert.True(t, m.Fail("Network error. Please check your connection and try again."))
	assert.Equal(t, StateFailed, m.State())
	assert.Equal(t, "Network error. Please check your connection and try again.", m.Failure())

	// Retry directly from Failed
	assert.True(t, m.Begin())
	assert.Equal(t, StateSubmitting, m.State())
	assert.Empty(t, m.Failure(), "entering Submitting clears the old failure")
}

func TestMachine_DoubleBeginSuppressed(t *testing.T) {
	m := NewMachine()
	assert.True(t, m.Begin())
	assert.False(t, m.Begin(), "at most one submission in flight")
	assert.Equal(t, StateSubmitting, m.State())
}

func TestMachine_SubmittedNeedsReset(t *testing.T) {
	m := NewMachine()
	m.Begin()
	m.Succeed()

	assert.False(t, m.Begin(), "a new message requires an explicit reset first")
	assert.True(t, m.Reset())
	assert.True(t, m.Begin())
}

func TestMachine_NoResetWhileSubmitting(t *testing.T) {
	m := NewMachine()
	m.Begin()
	assert.False(t, m.Reset())
	assert.Equal(t, StateSubmitting, m.State())
}

func TestMachine_TerminalTransitionsOnlyFromSubmitting(t *testing.T) {
	m := NewMachine()
	assert.False(t, m.Succeed())
	assert.False(t, m.Fail("x"))
	assert.Equal(t, StateIdle, m.State())
}

func TestFields_MissingRequired(t *testing.T) {
	f := Fields{Name: "Asha", Email: "asha@example.com"}
	missing := f.MissingRequired()
	assert.ElementsMatch(t, []string{"businessName", "businessType", "message"}, missing)

	full := Fields{
		Name:         "Asha",
		Email:        "asha@example.com",
		BusinessName: "Asha Pickles",
		BusinessType: "Pickles & Preserves",
		Message:      "Need funding",
	}
	assert.Empty(t, full.MissingRequired())
	assert.NotContains(t, Fields{}.MissingRequired(), "phone", "phone is optional")
}
