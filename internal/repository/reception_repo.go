package repository

import (
	"context"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceptionRepository interface {
	CreateStation(ctx context.Context, s *model.Station) error
	FindStationByID(ctx context.Context, id uuid.UUID) (*model.Station, error)
	// CountOpenTickets is evaluated inside the close transaction so the
	// check-then-update pair is atomic.
	CountOpenTickets(tx *gorm.DB, stationID uuid.UUID) (int64, error)
	CloseStationTx(tx *gorm.DB, s *model.Station) (int64, error)

	CreateTicket(ctx context.Context, t *model.Ticket) error
	FindTicketByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	CloseTicketTx(tx *gorm.DB, t *model.Ticket) (int64, error)

	CreateLine(ctx context.Context, l *model.Line) error
	FindLineByID(ctx context.Context, id uuid.UUID) (*model.Line, error)
	UpdateLine(ctx context.Context, l *model.Line) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
}

type receptionRepo struct{ db *gorm.DB }

func NewReceptionRepository(db *gorm.DB) ReceptionRepository { return &receptionRepo{db: db} }

func (r *receptionRepo) CreateStation(ctx context.Context, s *model.Station) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *receptionRepo) FindStationByID(ctx context.Context, id uuid.UUID) (*model.Station, error) {
	var s model.Station
	err := r.db.WithContext(ctx).Preload("Tickets").First(&s, id).Error
	return &s, err
}

func (r *receptionRepo) CountOpenTickets(tx *gorm.DB, stationID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Ticket{}).
		Where("station_id = ? AND status = ?", stationID, model.ReceptionOpened).
		Count(&n).Error
	return n, err
}

func (r *receptionRepo) CloseStationTx(tx *gorm.DB, s *model.Station) (int64, error) {
	res := tx.Model(&model.Station{}).
		Where("id = ? AND status = ?", s.ID, model.ReceptionOpened).
		Updates(map[string]interface{}{
			"status":    model.ReceptionClosed,
			"closed_at": s.ClosedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *receptionRepo) CreateTicket(ctx context.Context, t *model.Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *receptionRepo) FindTicketByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).Preload("Lines").First(&t, id).Error
	return &t, err
}

func (r *receptionRepo) CloseTicketTx(tx *gorm.DB, t *model.Ticket) (int64, error) {
	res := tx.Model(&model.Ticket{}).
		Where("id = ? AND status = ?", t.ID, model.ReceptionOpened).
		Updates(map[string]interface{}{
			"status":    model.ReceptionClosed,
			"closed_at": t.ClosedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *receptionRepo) CreateLine(ctx context.Context, l *model.Line) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *receptionRepo) FindLineByID(ctx context.Context, id uuid.UUID) (*model.Line, error) {
	var l model.Line
	err := r.db.WithContext(ctx).First(&l, id).Error
	return &l, err
}

func (r *receptionRepo) UpdateLine(ctx context.Context, l *model.Line) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *receptionRepo) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Line{}, id).Error
}
