package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Subscription struct {
	Id                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId               uuid.UUID  `gorm:"type:uuid;not null;index"`
	PaddleSubscriptionId *string    `gorm:"type:varchar(255);uniqueIndex"`
	PlanId               string     `gorm:"type:varchar(255);not null"`
	PlanName             string     `gorm:"type:varchar(255)"`
	BillingCycle         string     `gorm:"type:varchar(20);not null;default:monthly"`
	UnitPrice            float64    `gorm:"type:decimal(10,2);default:0"`
	Currency             string     `gorm:"type:char(3);default:USD"`
	Quantity             int        `gorm:"default:1"`
	Status               string     `gorm:"type:varchar(50);not null;index"`
	LicenseKey           string     `gorm:"type:varchar(19);uniqueIndex;not null"`
	StartedAt            time.Time  `gorm:"not null"`
	NextBilledAt         *time.Time ``
	LastPaymentAt        *time.Time ``
	CanceledAt           *time.Time ``
	PastDueAt            *time.Time ``
	PaddleData           datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt            time.Time  `gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
