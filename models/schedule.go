package models

import "time"

// Schedule is a dated room booking for one class of a course. Times are
// zero-padded "HH:MM" so lexical order matches clock order; two rows for
// the same (course, class, date) must not overlap as half-open intervals.
type Schedule struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	FacultyID uint   `json:"faculty_id" gorm:"index;not null"`
	Class     string `json:"class" gorm:"size:20;not null"`
	Date      string `json:"date" gorm:"size:10;not null"`       // YYYY-MM-DD
	StartTime string `json:"start_time" gorm:"size:5;not null"`  // HH:MM
	EndTime   string `json:"end_time" gorm:"size:5;not null"`    // HH:MM
	Room      string `json:"room" gorm:"size:40"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
