package models

// Account roles. Every protected route declares which of these may call it.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)
