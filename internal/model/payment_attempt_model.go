package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentAttempt struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Email        string     `gorm:"type:varchar(255)"`
	PlanId       string     `gorm:"type:varchar(255);not null"`
	PlanName     string     `gorm:"type:varchar(255)"`
	Amount       float64    `gorm:"type:decimal(10,2);default:0"`
	Currency     string     `gorm:"type:char(3);default:USD"`
	Status       string     `gorm:"type:varchar(50);not null;index"`
	ErrorMessage *string    `gorm:"type:text"`
	CompletedAt  *time.Time ``
	CreatedAt    time.Time  `gorm:"autoCreateTime;index"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
