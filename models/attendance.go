package models

import "time"

// One presence mark per student, course and date.
type Attendance struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID uint   `json:"student_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Date      string `json:"date" gorm:"size:10;not null"` // YYYY-MM-DD
	Present   bool   `json:"present" gorm:"not null"`
	FacultyID *uint  `json:"faculty_id,omitempty"` // who recorded the mark, if a faculty did

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
