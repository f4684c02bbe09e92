package models

import "time"

// FacultyCourse mirrors Course.FacultyID as an explicit assignment row.
// Course.FacultyID stays authoritative; this table is what assignment
// queries join through.
type FacultyCourse struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FacultyID uint      `json:"faculty_id" gorm:"uniqueIndex:idx_faculty_course;not null"`
	CourseID  uint      `json:"course_id" gorm:"uniqueIndex:idx_faculty_course;not null"`
	CreatedAt time.Time `json:"created_at"`
}
