package models

import "time"

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:60;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // bcrypt hash
	Email        string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Phone        string    `json:"phone" gorm:"size:20"`
	Address      string    `json:"address" gorm:"size:255"`
	Role         string    `json:"role" gorm:"size:20;not null;default:'admin'"` // admin | faculty | student
	Status       byte      `json:"status" gorm:"not null;default:1"`             // 1 = active, 0 = disabled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
