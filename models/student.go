package models

import "time"

type Student struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	FullName         string     `json:"full_name" gorm:"size:100;not null"`
	Email            string     `json:"email" gorm:"size:120;not null"`
	Major            string     `json:"major" gorm:"size:80"`
	Gender           string     `json:"gender" gorm:"size:10"`
	Dob              *time.Time `json:"dob,omitempty"`
	GPA              float64    `json:"gpa"`
	AcademicStanding string     `json:"academic_standing" gorm:"size:40"`
	Class            string     `json:"class" gorm:"size:20;index"` // cohort label, e.g. "SE001"
	UserID           uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
