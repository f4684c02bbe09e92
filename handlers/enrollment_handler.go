package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

type EnrollmentHandler struct {
	DB *gorm.DB
}

func NewEnrollmentHandler(db *gorm.DB) *EnrollmentHandler { return &EnrollmentHandler{DB: db} }

// GET /enrollments?student_id=&course_id=
func (h *EnrollmentHandler) List(c echo.Context) error {
	tx := h.DB.Model(&models.Enrollment{})
	if sid := atoiOr(c.QueryParam("student_id"), 0); sid > 0 {
		tx = tx.Where("student_id = ?", sid)
	}
	if cid := atoiOr(c.QueryParam("course_id"), 0); cid > 0 {
		tx = tx.Where("course_id = ?", cid)
	}

	var items []models.Enrollment
	if err := tx.Order("id ASC").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

type enrollReq struct {
	StudentID uint `json:"student_id"`
	CourseID  uint `json:"course_id"`
}

// POST /enrollments
func (h *EnrollmentHandler) Create(c echo.Context) error {
	var req enrollReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if req.StudentID == 0 || req.CourseID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var cnt int64
	if err := h.DB.Model(&models.Student{}).Where("id = ?", req.StudentID).Count(&cnt).Error; err != nil || cnt == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
	}
	if err := h.DB.Model(&models.Course{}).Where("id = ?", req.CourseID).Count(&cnt).Error; err != nil || cnt == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "COURSE_NOT_FOUND"})
	}
	if err := h.DB.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", req.StudentID, req.CourseID).
		Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "ALREADY_ENROLLED"})
	}

	e := models.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID}
	if err := h.DB.Create(&e).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, e)
}

// DELETE /enrollments/:id
func (h *EnrollmentHandler) Delete(c echo.Context) error {
	var e models.Enrollment
	if err := h.DB.First(&e, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if err := h.DB.Delete(&e).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

type autoEnrollReq struct {
	Class string `json:"class"`
}

// POST /enrollments/auto-by-class — enrolls every student of the class into
// every course offered to it, skipping pairs that already exist.
func (h *EnrollmentHandler) AutoEnrollByClass(c echo.Context) error {
	var req autoEnrollReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	class := strings.TrimSpace(req.Class)
	if class == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "CLASS_REQUIRED"})
	}

	var studentIDs []uint
	if err := h.DB.Model(&models.Student{}).Where("class = ?", class).Pluck("id", &studentIDs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	var courseIDs []uint
	if err := h.DB.Model(&models.CourseClass{}).Where("name = ?", class).Pluck("course_id", &courseIDs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	created := 0
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, sid := range studentIDs {
			for _, cid := range courseIDs {
				var cnt int64
				if err := tx.Model(&models.Enrollment{}).
					Where("student_id = ? AND course_id = ?", sid, cid).
					Count(&cnt).Error; err != nil {
					return err
				}
				if cnt > 0 {
					continue
				}
				if err := tx.Create(&models.Enrollment{StudentID: sid, CourseID: cid}).Error; err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"class":    class,
		"students": len(studentIDs),
		"courses":  len(courseIDs),
		"created":  created,
	})
}
