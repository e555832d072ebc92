package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditAssignment maps a counter to the warehouse zones they cover.
type AuditAssignment struct {
	ID      uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	AuditID uuid.UUID      `gorm:"column:audit_id;type:uuid;not null;index"`
	UserID  uuid.UUID      `gorm:"column:user_id;type:uuid;not null"`
	Zones   pq.StringArray `gorm:"column:zones;type:text[]"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
