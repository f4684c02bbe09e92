package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// GET /dashboard — central dispatch after login.
func (h *DashboardHandler) Index(c echo.Context) error {
	role := sessionRole(c)
	var path string
	switch role {
	case models.RoleAdmin:
		path = "/dashboard/admin"
	case models.RoleFaculty:
		path = "/dashboard/faculty"
	case models.RoleStudent:
		path = "/dashboard/student"
	default:
		return c.JSON(http.StatusForbidden, map[string]any{"error": "UNKNOWN_ROLE"})
	}
	return c.JSON(http.StatusOK, map[string]any{"role": role, "dashboard": path})
}

// GET /dashboard/admin — headline totals plus the two chart series.
func (h *DashboardHandler) Admin(c echo.Context) error {
	var totalStudents, totalFaculty, totalCourses int64
	if err := h.DB.Model(&models.Student{}).Count(&totalStudents).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if err := h.DB.Model(&models.Faculty{}).Count(&totalFaculty).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if err := h.DB.Model(&models.Course{}).Count(&totalCourses).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	// courses per faculty (bar chart)
	type facultyCount struct {
		FacultyName string `json:"faculty_name"`
		Courses     int64  `json:"courses"`
	}
	var perFaculty []facultyCount
	if err := h.DB.Model(&models.Faculty{}).
		Select("faculties.faculty_name AS faculty_name, COUNT(c.id) AS courses").
		Joins("LEFT JOIN courses c ON c.faculty_id = faculties.id").
		Group("faculties.id, faculties.faculty_name").
		Order("faculties.id ASC").
		Scan(&perFaculty).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	// students per class (doughnut chart)
	type classCount struct {
		Class    string `json:"class"`
		Students int64  `json:"students"`
	}
	var perClass []classCount
	if err := h.DB.Model(&models.Student{}).
		Select("class, COUNT(*) AS students").
		Group("class").
		Order("class ASC").
		Scan(&perClass).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"total_students":      totalStudents,
		"total_faculty":       totalFaculty,
		"total_courses":       totalCourses,
		"courses_per_faculty": perFaculty,
		"students_per_class":  perClass,
	})
}

// GET /dashboard/faculty — profile, assigned courses and today's schedule.
func (h *DashboardHandler) Faculty(c echo.Context) error {
	var f models.Faculty
	if err := h.DB.Where("user_id = ?", sessionUserID(c)).First(&f).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "FACULTY_NOT_FOUND"})
	}

	var courses []models.Course
	if err := h.DB.Preload("Classes").
		Joins("JOIN faculty_courses fc ON fc.course_id = courses.id").
		Where("fc.faculty_id = ?", f.ID).
		Order("courses.id ASC").
		Find(&courses).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	today := time.Now().Format("2006-01-02")
	var todaySchedule []models.Schedule
	if err := h.DB.Where("faculty_id = ? AND date = ?", f.ID, today).
		Order("start_time ASC").
		Find(&todaySchedule).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"faculty":        f,
		"courses":        courses,
		"today":          today,
		"today_schedule": todaySchedule,
	})
}

// GET /dashboard/student — profile plus enrolled courses.
func (h *DashboardHandler) Student(c echo.Context) error {
	var s models.Student
	if err := h.DB.Where("user_id = ?", sessionUserID(c)).First(&s).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
	}

	var courses []models.Course
	if err := h.DB.Preload("Classes").
		Joins("JOIN enrollments e ON e.course_id = courses.id").
		Where("e.student_id = ?", s.ID).
		Order("courses.id ASC").
		Find(&courses).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"student": s,
		"courses": courses,
	})
}
