package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
)

// Recorder appends entries inside a caller-owned transaction. It backs the
// inventory service's LedgerRecorder dependency.
type Recorder struct {
	repo Repository
}

// NewRecorder builds a Recorder over the ledger repository.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record validates and persists the entry within tx.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error {
	if tx == nil {
		return fmt.Errorf("transaction required for ledger write")
	}
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	if entry.RecordID == uuid.Nil {
		return fmt.Errorf("entry record id is required")
	}
	if entry.ActorID == uuid.Nil {
		return fmt.Errorf("entry actor id is required")
	}
	if !entry.Type.IsValid() {
		return fmt.Errorf("invalid ledger entry type %q", entry.Type)
	}
	if entry.Quantity < 0 || entry.PreviousQty < 0 || entry.NewQty < 0 {
		return fmt.Errorf("ledger quantities cannot be negative")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.repo.WithTx(tx).Create(ctx, entry)
}
