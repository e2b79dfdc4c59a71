package service

import (
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"

	"github.com/shopspring/decimal"
)

// Reconcile computes the theoretical closing amount and the cash variance for
// a session close:
//
//	closing = initial + Σ sale.total_amount
//	variance = actual − closing
//
// With no sales the closing amount equals the initial float. A negative
// variance is a shortage, a positive one a surplus; both are valid business
// outcomes, never errors, and no variance magnitude forces a comment — any
// threshold policy belongs to the UI layer.
func Reconcile(initial decimal.Decimal, sales []model.Sale, actual decimal.Decimal) (closing, variance decimal.Decimal) {
	closing = initial
	for _, s := range sales {
		closing = closing.Add(s.TotalAmount)
	}
	variance = actual.Sub(closing)
	return closing, variance
}
