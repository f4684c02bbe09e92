package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

type ScheduleHandler struct {
	DB *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler { return &ScheduleHandler{DB: db} }

// Zero-padded 24h clock; lexical comparison of two valid values matches
// chronological order.
var reClock = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type schedulePayload struct {
	CourseID  uint   `json:"course_id"`
	FacultyID uint   `json:"faculty_id"`
	Class     string `json:"class"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	Room      string `json:"room"`
}

func (p *schedulePayload) normalize() {
	p.Class = strings.TrimSpace(p.Class)
	p.Date = strings.TrimSpace(p.Date)
	p.StartTime = strings.TrimSpace(p.StartTime)
	p.EndTime = strings.TrimSpace(p.EndTime)
	p.Room = strings.TrimSpace(p.Room)
}

func (h *ScheduleHandler) validateSchedule(p *schedulePayload) map[string]string {
	errs := map[string]string{}
	if p.CourseID == 0 {
		errs["course_id"] = "please select a course"
	}
	if p.FacultyID == 0 {
		errs["faculty_id"] = "please select a faculty"
	}
	if p.Class == "" {
		errs["class"] = "class is required"
	}
	if p.Date == "" {
		errs["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		errs["date"] = "date must be YYYY-MM-DD"
	}
	if !reClock.MatchString(p.StartTime) {
		errs["start_time"] = "start_time must be HH:MM"
	}
	if !reClock.MatchString(p.EndTime) {
		errs["end_time"] = "end_time must be HH:MM"
	}
	if errs["start_time"] == "" && errs["end_time"] == "" && p.StartTime >= p.EndTime {
		errs["end_time"] = "end time must be later than start time"
	}

	// the class label must be one the course is offered to
	if errs["course_id"] == "" && errs["class"] == "" {
		var cnt int64
		if err := h.DB.Model(&models.CourseClass{}).
			Where("course_id = ? AND name = ?", p.CourseID, p.Class).
			Count(&cnt).Error; err == nil && cnt == 0 {
			errs["class"] = "class is not offered by this course"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// conflictFor finds an existing schedule for the same course, class and date
// whose half-open interval overlaps [start, end). excludeID skips the row
// being edited.
func (h *ScheduleHandler) conflictFor(p *schedulePayload, excludeID uint) (*models.Schedule, error) {
	tx := h.DB.Where("course_id = ? AND class = ? AND date = ?", p.CourseID, p.Class, p.Date).
		Where("start_time < ? AND end_time > ?", p.EndTime, p.StartTime)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	var existing models.Schedule
	err := tx.First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// GET /schedules?course_id=
func (h *ScheduleHandler) List(c echo.Context) error {
	tx := h.DB.Model(&models.Schedule{})
	if courseID := atoiOr(c.QueryParam("course_id"), 0); courseID > 0 {
		tx = tx.Where("course_id = ?", courseID)
	}

	var items []models.Schedule
	if err := tx.Order("date ASC, start_time ASC, id ASC").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

// GET /schedules/:id
func (h *ScheduleHandler) Get(c echo.Context) error {
	var s models.Schedule
	if err := h.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, s)
}

// POST /schedules
func (h *ScheduleHandler) Create(c echo.Context) error {
	var p schedulePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := h.validateSchedule(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	conflict, err := h.conflictFor(&p, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if conflict != nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "SCHEDULE_CONFLICT", "conflict_id": conflict.ID})
	}

	s := models.Schedule{
		CourseID:  p.CourseID,
		FacultyID: p.FacultyID,
		Class:     p.Class,
		Date:      p.Date,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Room:      p.Room,
	}
	if err := h.DB.Create(&s).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, s)
}

// PUT /schedules/:id
func (h *ScheduleHandler) Update(c echo.Context) error {
	var s models.Schedule
	if err := h.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var p schedulePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := h.validateSchedule(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	conflict, err := h.conflictFor(&p, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if conflict != nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "SCHEDULE_CONFLICT", "conflict_id": conflict.ID})
	}

	s.CourseID = p.CourseID
	s.FacultyID = p.FacultyID
	s.Class = p.Class
	s.Date = p.Date
	s.StartTime = p.StartTime
	s.EndTime = p.EndTime
	s.Room = p.Room

	if err := h.DB.Save(&s).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// DELETE /schedules/:id
func (h *ScheduleHandler) Delete(c echo.Context) error {
	var s models.Schedule
	if err := h.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if err := h.DB.Delete(&s).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
