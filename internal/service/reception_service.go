package service

import (
	"context"
	"errors"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/dto"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ReceptionService interface {
	OpenStation(ctx context.Context, actor uuid.UUID) (*dto.StationResponse, error)
	CloseStation(ctx context.Context, id uuid.UUID) (*dto.StationResponse, error)
	GetStation(ctx context.Context, id uuid.UUID) (*dto.StationResponse, error)

	OpenTicket(ctx context.Context, stationID, actor uuid.UUID) (*dto.TicketResponse, error)
	CloseTicket(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error)

	AddLine(ctx context.Context, ticketID uuid.UUID, req dto.CreateLineRequest) (*dto.LineResponse, error)
	UpdateLine(ctx context.Context, lineID uuid.UUID, req dto.UpdateLineRequest) (*dto.LineResponse, error)
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
}

type receptionService struct {
	db   *gorm.DB
	repo repository.ReceptionRepository
}

func NewReceptionService(db *gorm.DB, repo repository.ReceptionRepository) ReceptionService {
	return &receptionService{db: db, repo: repo}
}

// ── Stations ──────────────────────────────────────────────────────────────────

func (s *receptionService) OpenStation(ctx context.Context, actor uuid.UUID) (*dto.StationResponse, error) {
	station := &model.Station{
		OpenedBy: actor,
		Status:   model.ReceptionOpened,
		OpenedAt: time.Now(),
	}
	if err := s.repo.CreateStation(ctx, station); err != nil {
		return nil, err
	}
	log.Info().Str("station_id", station.ID.String()).Msg("reception station opened")
	return toStationResponse(station), nil
}

// CloseStation refuses to close while any owned ticket is still opened. The
// open-children check and the status flip run in the same transaction so two
// concurrent closes (or a close racing a ticket creation) cannot both win.
func (s *receptionService) CloseStation(ctx context.Context, id uuid.UUID) (*dto.StationResponse, error) {
	station, err := s.repo.FindStationByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "station", id)
	}
	if station.Status != model.ReceptionOpened {
		return nil, apierror.Conflict("station %s is already closed", id)
	}

	now := time.Now()
	station.ClosedAt = &now
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		open, err := s.repo.CountOpenTickets(tx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return apierror.Conflict("%d tickets still open", open)
		}

		affected, err := s.repo.CloseStationTx(tx, station)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierror.Conflict("station %s is already closed", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	station.Status = model.ReceptionClosed
	log.Info().Str("station_id", id.String()).Msg("reception station closed")
	return toStationResponse(station), nil
}

func (s *receptionService) GetStation(ctx context.Context, id uuid.UUID) (*dto.StationResponse, error) {
	station, err := s.repo.FindStationByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "station", id)
	}
	return toStationResponse(station), nil
}

// ── Tickets ───────────────────────────────────────────────────────────────────

func (s *receptionService) OpenTicket(ctx context.Context, stationID, actor uuid.UUID) (*dto.TicketResponse, error) {
	station, err := s.repo.FindStationByID(ctx, stationID)
	if err != nil {
		return nil, notFound(err, "station", stationID)
	}
	if station.Status != model.ReceptionOpened {
		return nil, apierror.Conflict("station %s is closed", stationID)
	}

	ticket := &model.Ticket{
		StationID: stationID,
		OpenedBy:  actor,
		Status:    model.ReceptionOpened,
		OpenedAt:  time.Now(),
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return toTicketResponse(ticket), nil
}

func (s *receptionService) CloseTicket(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error) {
	ticket, err := s.repo.FindTicketByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "ticket", id)
	}
	if ticket.Status != model.ReceptionOpened {
		return nil, apierror.Conflict("ticket %s is already closed", id)
	}

	now := time.Now()
	ticket.ClosedAt = &now
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		affected, err := s.repo.CloseTicketTx(tx, ticket)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierror.Conflict("ticket %s is already closed", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ticket.Status = model.ReceptionClosed
	return toTicketResponse(ticket), nil
}

func (s *receptionService) GetTicket(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error) {
	ticket, err := s.repo.FindTicketByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "ticket", id)
	}
	return toTicketResponse(ticket), nil
}

// ── Lines ─────────────────────────────────────────────────────────────────────

func (s *receptionService) AddLine(ctx context.Context, ticketID uuid.UUID, req dto.CreateLineRequest) (*dto.LineResponse, error) {
	ticket, err := s.repo.FindTicketByID(ctx, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	if ticket.Status != model.ReceptionOpened {
		return nil, apierror.Conflict("ticket %s is closed", ticketID)
	}

	if !req.Weight.IsPositive() {
		return nil, apierror.Validation("weight must be greater than zero")
	}
	if !model.ValidDestination(req.Destination) {
		return nil, apierror.Validation("unknown destination %q", req.Destination)
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apierror.Validation("invalid category id")
	}

	line := &model.Line{
		TicketID:    ticketID,
		CategoryID:  categoryID,
		Weight:      req.Weight,
		Destination: req.Destination,
		Notes:       req.Notes,
	}
	if err := s.repo.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return toLineResponse(line), nil
}

func (s *receptionService) UpdateLine(ctx context.Context, lineID uuid.UUID, req dto.UpdateLineRequest) (*dto.LineResponse, error) {
	line, err := s.repo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, notFound(err, "line", lineID)
	}
	if err := s.requireOpenTicket(ctx, line.TicketID); err != nil {
		return nil, err
	}

	if req.Weight != nil {
		if !req.Weight.IsPositive() {
			return nil, apierror.Validation("weight must be greater than zero")
		}
		line.Weight = *req.Weight
	}
	if req.Destination != nil {
		if !model.ValidDestination(*req.Destination) {
			return nil, apierror.Validation("unknown destination %q", *req.Destination)
		}
		line.Destination = *req.Destination
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.Validation("invalid category id")
		}
		line.CategoryID = categoryID
	}
	if req.Notes != nil {
		line.Notes = *req.Notes
	}

	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return toLineResponse(line), nil
}

func (s *receptionService) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	line, err := s.repo.FindLineByID(ctx, lineID)
	if err != nil {
		return notFound(err, "line", lineID)
	}
	if err := s.requireOpenTicket(ctx, line.TicketID); err != nil {
		return err
	}
	return s.repo.DeleteLine(ctx, lineID)
}

func (s *receptionService) requireOpenTicket(ctx context.Context, ticketID uuid.UUID) error {
	ticket, err := s.repo.FindTicketByID(ctx, ticketID)
	if err != nil {
		return notFound(err, "ticket", ticketID)
	}
	if ticket.Status != model.ReceptionOpened {
		return apierror.Conflict("ticket %s is closed", ticketID)
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || apierror.IsKind(err, apierror.KindNotFound) {
		return apierror.NotFound("%s %s not found", entity, id)
	}
	return err
}

func toLineResponse(l *model.Line) *dto.LineResponse {
	return &dto.LineResponse{
		ID:          l.ID.String(),
		TicketID:    l.TicketID.String(),
		CategoryID:  l.CategoryID.String(),
		Weight:      l.Weight,
		Destination: l.Destination,
		Notes:       l.Notes,
	}
}

func toTicketResponse(t *model.Ticket) *dto.TicketResponse {
	resp := &dto.TicketResponse{
		ID:        t.ID.String(),
		StationID: t.StationID.String(),
		Status:    t.Status,
		OpenedAt:  t.OpenedAt.UTC().Format(time.RFC3339),
	}
	if t.ClosedAt != nil {
		ts := t.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &ts
	}
	for i := range t.Lines {
		resp.Lines = append(resp.Lines, *toLineResponse(&t.Lines[i]))
	}
	return resp
}

func toStationResponse(s *model.Station) *dto.StationResponse {
	resp := &dto.StationResponse{
		ID:       s.ID.String(),
		Status:   s.Status,
		OpenedAt: s.OpenedAt.UTC().Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		ts := s.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &ts
	}
	for i := range s.Tickets {
		resp.Tickets = append(resp.Tickets, *toTicketResponse(&s.Tickets[i]))
	}
	return resp
}
