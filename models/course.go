package models

import "time"

type Course struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CourseName string     `json:"course_name" gorm:"size:100;not null"`
	Credits    int        `json:"credits" gorm:"not null"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	FacultyID  uint       `json:"faculty_id" gorm:"index;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Classes []CourseClass `json:"classes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// CourseClass is one cohort label a course is offered to. One row per
// label keeps them queryable, instead of a comma-separated column on
// Course.
type CourseClass struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"uniqueIndex:idx_course_class;not null"`
	Name     string `json:"name" gorm:"size:20;uniqueIndex:idx_course_class;not null"`
}
