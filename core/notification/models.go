package notification

import (
	"time"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
)

// DefaultTTL is applied when a notification is created without an expiry.
const DefaultTTL = 30 * 24 * time.Hour

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	IsPublished bool      `json:"isPublished"`
	ExpiryDate  time.Time `json:"expiryDate"`
	AutoSend    bool      `json:"autoSend"`
	ExamID      string    `json:"examId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

// Expired reports whether the notification is past its expiry; expired rows
// are hidden from the published feed whether or not the sweep removed them yet.
func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiryDate.Before(now)
}

// NewNotification contains information needed to create a new Notification.
// It is saved as an unpublished draft unless AutoSend is set, in which case
// it is published (and broadcast) immediately. ExamID optionally links the
// notification to an exam; the reference is weak, like all cross-entity ids.
type NewNotification struct {
	Title      string    `json:"title" validate:"required"`
	Message    string    `json:"message" validate:"required"`
	ExpiryDate time.Time `json:"expiryDate"`
	AutoSend   bool      `json:"autoSend"`
	ExamID     string    `json:"examId"`
}

func (nn *NewNotification) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	return core.Validate.Struct(nn)
}

// UpdateNotification enumerates the mutable Notification fields.
type UpdateNotification struct {
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	ExpiryDate time.Time `json:"expiryDate"`
}

func (un *UpdateNotification) Validate() error {
	un.Title = core.CleanString(un.Title)
	un.Message = core.CleanString(un.Message)
	return core.Validate.Struct(un)
}
