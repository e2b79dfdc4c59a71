package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status values.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Cash session sub-steps. Purely informational: the server records the
// transitions for UI and metrics but never force-closes an idle session.
const (
	StepEntry = "entry"
	StepSale  = "sale"
	StepExit  = "exit"
)

// Session represents a cashier shift bounded by an opening cash count and a
// closing reconciliation. Status: "open" | "closed".
type Session struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;index"`
	SiteID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(20);not null;default:'open'"`

	InitialAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ClosingAmount is computed on close: InitialAmount + SUM(sales)
	ClosingAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualAmount    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Variance        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	VarianceComment *string

	// CurrentStep: "entry" | "sale" | "exit"
	CurrentStep   string    `gorm:"type:varchar(10);not null;default:'entry'"`
	LastActivity  time.Time `gorm:"not null"`
	StepStartTime time.Time `gorm:"not null"`

	OpenedAt time.Time
	ClosedAt *time.Time

	// ReportFile is the base name of the close-out artifact, set when the
	// close transaction commits.
	ReportFile *string

	Sales []Sale `gorm:"foreignKey:SessionID"`
}

// Sale is an immutable aggregate input to reconciliation. Sales are recorded
// by the register front end during the shift; the close path only sums them.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Label       string          `gorm:"not null"`
	CreatedAt   time.Time
}
