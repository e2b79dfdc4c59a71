package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reception status values, shared by stations and tickets.
const (
	ReceptionOpened = "opened"
	ReceptionClosed = "closed"
)

// Line destinations. A line must carry exactly one of these.
const (
	DestinationReuse   = "reuse"
	DestinationRecycle = "recycle"
	DestinationWaste   = "waste"
)

// ValidDestination reports whether d is a recognized destination value.
func ValidDestination(d string) bool {
	switch d {
	case DestinationReuse, DestinationRecycle, DestinationWaste:
		return true
	}
	return false
}

// Station ("poste") is a reception counter opened by an operator for a shift.
// It cannot close while any of its tickets is still opened.
type Station struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OpenedBy uuid.UUID `gorm:"type:uuid;not null;index"`
	Status   string    `gorm:"type:varchar(20);not null;default:'opened'"`
	OpenedAt time.Time
	ClosedAt *time.Time

	Tickets []Ticket `gorm:"foreignKey:StationID"`
}

// Ticket groups one depositor's weighed lines within a station.
// Lines are frozen once the ticket is closed.
type Ticket struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StationID uuid.UUID `gorm:"type:uuid;index;not null"`
	OpenedBy  uuid.UUID `gorm:"type:uuid;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'opened'"`
	OpenedAt  time.Time
	ClosedAt  *time.Time

	Lines []Line `gorm:"foreignKey:TicketID"`
}

// Line is a single weighed, categorized item entry within a ticket.
type Line struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null"`
	Weight     decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	// Destination: "reuse" | "recycle" | "waste"
	Destination string `gorm:"type:varchar(20);not null"`
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
