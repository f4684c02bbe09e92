package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

type SearchHandler struct {
	DB *gorm.DB
}

func NewSearchHandler(db *gorm.DB) *SearchHandler { return &SearchHandler{DB: db} }

// Quick commands answered as a redirect target instead of a result set.
var quickCommands = []struct {
	needle string
	path   string
}{
	{"list students", "/students"},
	{"add student", "/students/add"},
	{"list courses", "/courses"},
	{"add course", "/courses/add"},
	{"list schedules", "/schedules"},
	{"add schedule", "/schedules/add"},
}

var quickAliases = map[string]string{
	"students":  "/students",
	"courses":   "/courses",
	"schedules": "/schedules",
}

// GET /search?q= — cross-entity search over students, courses and
// schedules.
func (h *SearchHandler) Index(c echo.Context) error {
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if q == "" {
		return c.JSON(http.StatusOK, map[string]any{"redirect": "/dashboard"})
	}

	if path, ok := quickAliases[q]; ok {
		return c.JSON(http.StatusOK, map[string]any{"redirect": path})
	}
	for _, cmd := range quickCommands {
		if strings.Contains(q, cmd.needle) {
			return c.JSON(http.StatusOK, map[string]any{"redirect": cmd.path})
		}
	}

	like := "%" + q + "%"

	var students []models.Student
	if err := h.DB.Where("LOWER(full_name) LIKE ? OR LOWER(class) LIKE ?", like, like).
		Find(&students).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var courses []models.Course
	if err := h.DB.Preload("Classes").Distinct("courses.*").
		Joins("LEFT JOIN course_classes cc ON cc.course_id = courses.id").
		Where("LOWER(courses.course_name) LIKE ? OR LOWER(cc.name) LIKE ?", like, like).
		Find(&courses).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var schedules []models.Schedule
	if err := h.DB.Where("LOWER(room) LIKE ? OR start_time LIKE ? OR end_time LIKE ?", like, like, like).
		Find(&schedules).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"query":     q,
		"students":  students,
		"courses":   courses,
		"schedules": schedules,
	})
}
