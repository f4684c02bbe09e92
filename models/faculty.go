package models

import "time"

type Faculty struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	FacultyName string     `json:"faculty_name" gorm:"size:100;not null"`
	Email       string     `json:"email" gorm:"size:120;not null"`
	Department  string     `json:"department" gorm:"size:80"`
	Phone       string     `json:"phone" gorm:"size:20"`
	HireDate    *time.Time `json:"hire_date,omitempty"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
