package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateLineRequest struct {
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
	Weight      decimal.Decimal `json:"weight"      validate:"required"`
	Destination string          `json:"destination" validate:"required"`
	Notes       string          `json:"notes"`
}

type UpdateLineRequest struct {
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	Weight      *decimal.Decimal `json:"weight"`
	Destination *string          `json:"destination"`
	Notes       *string          `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineResponse struct {
	ID          string          `json:"id"`
	TicketID    string          `json:"ticket_id"`
	CategoryID  string          `json:"category_id"`
	Weight      decimal.Decimal `json:"weight"`
	Destination string          `json:"destination"`
	Notes       string          `json:"notes,omitempty"`
}

type TicketResponse struct {
	ID        string         `json:"id"`
	StationID string         `json:"station_id"`
	Status    string         `json:"status"`
	OpenedAt  string         `json:"opened_at"`
	ClosedAt  *string        `json:"closed_at,omitempty"`
	Lines     []LineResponse `json:"lines,omitempty"`
}

type StationResponse struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	OpenedAt string           `json:"opened_at"`
	ClosedAt *string          `json:"closed_at,omitempty"`
	Tickets  []TicketResponse `json:"tickets,omitempty"`
}
