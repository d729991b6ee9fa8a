package models

import "time"

type Suggestion struct {
	ID         string    `gorm:"primaryKey;size:24" bson:"_id" json:"_id"`
	Suggestion string    `gorm:"not null" bson:"suggestion" json:"suggestion" validate:"required"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
