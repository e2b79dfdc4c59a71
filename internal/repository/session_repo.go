package repository

import (
	"context"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
	// CloseTx persists the closed state with a guarded UPDATE so that two
	// concurrent close attempts cannot both succeed. Returns the number of
	// rows affected (0 means the session was not open anymore).
	CloseTx(tx *gorm.DB, s *model.Session) (int64, error)
	// SetReportFileTx records the artifact name inside the close transaction.
	SetReportFileTx(tx *gorm.DB, id uuid.UUID, filename string) error
	SumSales(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
	AddSale(ctx context.Context, sale *model.Sale) error
	ListSales(ctx context.Context, sessionID uuid.UUID) ([]model.Sale, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).Preload("Sales").First(&s, id).Error
	return &s, err
}

func (r *sessionRepo) Update(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) CloseTx(tx *gorm.DB, s *model.Session) (int64, error) {
	res := tx.Model(&model.Session{}).
		Where("id = ? AND status = ?", s.ID, model.SessionOpen).
		Updates(map[string]interface{}{
			"status":           model.SessionClosed,
			"closing_amount":   s.ClosingAmount,
			"actual_amount":    s.ActualAmount,
			"variance":         s.Variance,
			"variance_comment": s.VarianceComment,
			"current_amount":   s.CurrentAmount,
			"closed_at":        s.ClosedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *sessionRepo) SetReportFileTx(tx *gorm.DB, id uuid.UUID, filename string) error {
	return tx.Model(&model.Session{}).Where("id = ?", id).Update("report_file", filename).Error
}

func (r *sessionRepo) SumSales(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *sessionRepo) AddSale(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *sessionRepo) ListSales(ctx context.Context, sessionID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at ASC").Find(&sales).Error
	return sales, err
}
