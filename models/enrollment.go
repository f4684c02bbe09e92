package models

import "time"

// Enrollment links a student to a course. One row per (student, course).
type Enrollment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StudentID uint      `json:"student_id" gorm:"uniqueIndex:idx_student_course;not null"`
	CourseID  uint      `json:"course_id" gorm:"uniqueIndex:idx_student_course;not null"`
	CreatedAt time.Time `json:"created_at"`
}
