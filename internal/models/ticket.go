package models

import "time"

// TicketStatus tracks where a ticket sits in the agency workflow.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketDone       TicketStatus = "DONE"
)

// Valid reports whether s is a known workflow status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketDone:
		return true
	default:
		return false
	}
}

// Ticket is a unit of work filed against a creator.
type Ticket struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Status      TicketStatus `json:"status"`
	CreatorID   string       `json:"creator_id"`
	CreatedByID string       `json:"created_by_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Creator is a talent profile managed by the agency. IdentityID links the
// profile to the login of the creator themself, when they have one.
type Creator struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IdentityID  *string   `json:"identity_id,omitempty"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}
