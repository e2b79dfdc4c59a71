package service

import (
	"context"
	"errors"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/dto"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/report"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/repository"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/token"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type SessionService interface {
	Open(ctx context.Context, operatorID, siteID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, id uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	// RecordActivity refreshes last_activity and optionally transitions the
	// informational sub-step. It never force-closes idle sessions.
	RecordActivity(ctx context.Context, id uuid.UUID, req dto.SessionActivityRequest) (*dto.SessionResponse, error)
	// ReportAccess mints a fresh download token for a closed session's artifact.
	ReportAccess(ctx context.Context, id uuid.UUID) (*dto.ReportAccessResponse, error)
}

type sessionService struct {
	db       *gorm.DB
	repo     repository.SessionRepository
	reports  *report.Generator
	tokens   *token.Issuer
	tokenTTL time.Duration
}

func NewSessionService(db *gorm.DB, repo repository.SessionRepository, reports *report.Generator, tokens *token.Issuer, tokenTTL time.Duration) SessionService {
	return &sessionService{db: db, repo: repo, reports: reports, tokens: tokens, tokenTTL: tokenTTL}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *sessionService) Open(ctx context.Context, operatorID, siteID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	now := time.Now()
	sess := &model.Session{
		OperatorID:    operatorID,
		SiteID:        siteID,
		Status:        model.SessionOpen,
		InitialAmount: req.InitialAmount,
		CurrentAmount: req.InitialAmount,
		CurrentStep:   model.StepEntry,
		LastActivity:  now,
		StepStartTime: now,
		OpenedAt:      now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	log.Info().Str("session_id", sess.ID.String()).Str("operator_id", operatorID.String()).Msg("session opened")
	return toSessionResponse(sess), nil
}

// Close performs reconciliation, persists the closed state and renders the
// close-out artifact — all inside one transaction. A failed report write
// rolls the close back: the session is never observably closed without its
// reconciliation fields or its artifact.
func (s *sessionService) Close(ctx context.Context, id uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, sessionNotFound(err, id)
	}
	if sess.Status != model.SessionOpen {
		return nil, apierror.Conflict("session %s is already closed", id)
	}

	closing, variance := Reconcile(sess.InitialAmount, sess.Sales, req.ActualAmount)

	now := time.Now()
	actual := req.ActualAmount
	sess.ClosingAmount = &closing
	sess.ActualAmount = &actual
	sess.Variance = &variance
	sess.VarianceComment = req.VarianceComment
	sess.CurrentAmount = actual
	sess.Status = model.SessionClosed
	sess.ClosedAt = &now

	var filename string
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		affected, err := s.repo.CloseTx(tx, sess)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Lost the race against a concurrent close.
			return apierror.Conflict("session %s is already closed", id)
		}

		filename, err = s.reports.Generate(sess)
		if err != nil {
			return err
		}
		return s.repo.SetReportFileTx(tx, id, filename)
	})
	if err != nil {
		return nil, err
	}
	sess.ReportFile = &filename

	tok, err := s.tokens.Generate(filename, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", id.String()).
		Str("variance", variance.StringFixed(2)).
		Str("report", filename).
		Msg("session closed")

	return &dto.CloseSessionResponse{
		Session:       *toSessionResponse(sess),
		ReportFile:    filename,
		DownloadToken: tok,
	}, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, sessionNotFound(err, id)
	}
	return toSessionResponse(sess), nil
}

func (s *sessionService) RecordActivity(ctx context.Context, id uuid.UUID, req dto.SessionActivityRequest) (*dto.SessionResponse, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, sessionNotFound(err, id)
	}
	if sess.Status != model.SessionOpen {
		return nil, apierror.Conflict("session %s is already closed", id)
	}

	now := time.Now()
	sess.LastActivity = now
	if req.Step != nil && *req.Step != sess.CurrentStep {
		sess.CurrentStep = *req.Step
		sess.StepStartTime = now
	}
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return toSessionResponse(sess), nil
}

func (s *sessionService) ReportAccess(ctx context.Context, id uuid.UUID) (*dto.ReportAccessResponse, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, sessionNotFound(err, id)
	}
	if sess.ReportFile == nil {
		return nil, apierror.NotFound("session %s has no report artifact", id)
	}

	tok, err := s.tokens.Generate(*sess.ReportFile, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.ReportAccessResponse{
		Filename:      *sess.ReportFile,
		DownloadToken: tok,
		ExpiresInSecs: int(s.tokenTTL.Seconds()),
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sessionNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || apierror.IsKind(err, apierror.KindNotFound) {
		return apierror.NotFound("session %s not found", id)
	}
	return err
}

func toSessionResponse(s *model.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:              s.ID.String(),
		OperatorID:      s.OperatorID.String(),
		SiteID:          s.SiteID.String(),
		Status:          s.Status,
		InitialAmount:   s.InitialAmount,
		CurrentAmount:   s.CurrentAmount,
		VarianceComment: s.VarianceComment,
		CurrentStep:     s.CurrentStep,
		LastActivity:    s.LastActivity.UTC().Format(time.RFC3339),
		StepStartTime:   s.StepStartTime.UTC().Format(time.RFC3339),
		OpenedAt:        s.OpenedAt.UTC().Format(time.RFC3339),
	}
	if s.ClosingAmount != nil && s.ActualAmount != nil && s.Variance != nil {
		resp.Reconciliation = &dto.ReconciliationResponse{
			ClosingAmount: *s.ClosingAmount,
			ActualAmount:  *s.ActualAmount,
			Variance:      *s.Variance,
		}
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
