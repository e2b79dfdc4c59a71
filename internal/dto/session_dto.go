package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"min=0"`
}

type CloseSessionRequest struct {
	ActualAmount    decimal.Decimal `json:"actual_amount"    validate:"min=0"`
	VarianceComment *string         `json:"variance_comment"`
}

type SessionActivityRequest struct {
	// Step is optional: when present it transitions the sub-step and resets
	// step_start_time; when absent only last_activity is refreshed.
	Step *string `json:"step" validate:"omitempty,oneof=entry sale exit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReconciliationResponse struct {
	ClosingAmount decimal.Decimal `json:"closing_amount"`
	ActualAmount  decimal.Decimal `json:"actual_amount"`
	Variance      decimal.Decimal `json:"variance"`
}

type SessionResponse struct {
	ID              string                  `json:"id"`
	OperatorID      string                  `json:"operator_id"`
	SiteID          string                  `json:"site_id"`
	Status          string                  `json:"status"`
	InitialAmount   decimal.Decimal         `json:"initial_amount"`
	CurrentAmount   decimal.Decimal         `json:"current_amount"`
	Reconciliation  *ReconciliationResponse `json:"reconciliation,omitempty"`
	VarianceComment *string                 `json:"variance_comment,omitempty"`
	CurrentStep     string                  `json:"current_step"`
	LastActivity    string                  `json:"last_activity"`
	StepStartTime   string                  `json:"step_start_time"`
	OpenedAt        string                  `json:"opened_at"`
	ClosedAt        *string                 `json:"closed_at,omitempty"`
}

type CloseSessionResponse struct {
	Session       SessionResponse `json:"session"`
	ReportFile    string          `json:"report_file"`
	DownloadToken string          `json:"download_token"`
}

type ReportAccessResponse struct {
	Filename      string `json:"filename"`
	DownloadToken string `json:"download_token"`
	ExpiresInSecs int    `json:"expires_in_seconds"`
}
