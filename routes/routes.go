package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/config"
	"github.com/HongAnh0929/ASM2-APDP/handlers"
	"github.com/HongAnh0929/ASM2-APDP/middlewares"
	"github.com/HongAnh0929/ASM2-APDP/models"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	auth := handlers.NewAuthHandler(db, cfg.JWTSecret, cfg.SessionCookie)
	std := handlers.NewStudentHandler(db)
	fac := handlers.NewFacultyHandler(db)
	crs := handlers.NewCourseHandler(db)
	sch := handlers.NewScheduleHandler(db)
	enr := handlers.NewEnrollmentHandler(db)
	dash := handlers.NewDashboardHandler(db)
	srch := handlers.NewSearchHandler(db)

	// ===== Public =====
	e.GET("/health", handlers.Health)
	e.POST("/auth/login", auth.Login)

	// ===== Authenticated =====
	authMW := middlewares.RequireAuth(cfg.JWTSecret, cfg.SessionCookie)
	anyRole := middlewares.RequireRole(models.RoleAdmin, models.RoleFaculty, models.RoleStudent)
	adminOnly := middlewares.RequireRole(models.RoleAdmin)
	staff := middlewares.RequireRole(models.RoleAdmin, models.RoleFaculty)

	r := e.Group("", authMW)

	r.POST("/auth/logout", auth.Logout, anyRole)
	r.GET("/auth/me", auth.Me, anyRole)
	r.PUT("/auth/password", auth.ChangePassword, anyRole)

	// Dashboard
	r.GET("/dashboard", dash.Index, anyRole)
	r.GET("/dashboard/admin", dash.Admin, adminOnly)
	r.GET("/dashboard/faculty", dash.Faculty, middlewares.RequireRole(models.RoleFaculty))
	r.GET("/dashboard/student", dash.Student, middlewares.RequireRole(models.RoleStudent))

	// Students
	r.GET("/students", std.List, anyRole)
	r.GET("/students/me", std.Me, middlewares.RequireRole(models.RoleStudent))
	r.GET("/students/:id", std.Get, adminOnly)
	r.POST("/students", std.Create, adminOnly)
	r.PUT("/students/:id", std.Update, adminOnly)
	r.DELETE("/students/:id", std.Delete, adminOnly)

	// Faculty profiles and the faculty workspace
	r.GET("/faculty", fac.List, anyRole)
	r.GET("/faculty/courses", fac.AssignedCourses, staff)
	r.GET("/faculty/courses/:courseId/attendance", fac.AttendanceSheet, staff)
	r.POST("/faculty/attendance", fac.RecordAttendance, staff)
	r.GET("/faculty/students", fac.Students, staff)
	r.GET("/faculty/:id", fac.Get, adminOnly)
	r.POST("/faculty", fac.Create, adminOnly)
	r.PUT("/faculty/:id", fac.Update, adminOnly)
	r.DELETE("/faculty/:id", fac.Delete, adminOnly)

	// Courses
	r.GET("/courses", crs.List, anyRole)
	r.GET("/courses/:id", crs.Get, anyRole)
	r.GET("/courses/:id/classes", crs.Classes, anyRole)
	r.POST("/courses", crs.Create, adminOnly)
	r.PUT("/courses/:id", crs.Update, adminOnly)
	r.DELETE("/courses/:id", crs.Delete, adminOnly)

	// Schedules
	r.GET("/schedules", sch.List, anyRole)
	r.GET("/schedules/:id", sch.Get, anyRole)
	r.POST("/schedules", sch.Create, adminOnly)
	r.PUT("/schedules/:id", sch.Update, adminOnly)
	r.DELETE("/schedules/:id", sch.Delete, adminOnly)

	// Enrollments
	r.GET("/enrollments", enr.List, adminOnly)
	r.POST("/enrollments", enr.Create, adminOnly)
	r.DELETE("/enrollments/:id", enr.Delete, adminOnly)
	r.POST("/enrollments/auto-by-class", enr.AutoEnrollByClass, adminOnly)

	// Cross-entity search
	r.GET("/search", srch.Index, anyRole)
}
