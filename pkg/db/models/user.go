package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// User mirrors the identity provider's view of an actor; the engine only
// needs a stable id for ledger attribution.
type User struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email     string          `gorm:"column:email;not null;uniqueIndex"`
	Name      string          `gorm:"column:name;not null"`
	Role      enums.ActorRole `gorm:"column:role;type:actor_role_enum;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
