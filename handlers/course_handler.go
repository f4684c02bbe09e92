package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

type CourseHandler struct {
	DB *gorm.DB
}

func NewCourseHandler(db *gorm.DB) *CourseHandler { return &CourseHandler{DB: db} }

type coursePayload struct {
	CourseName string   `json:"course_name"`
	Credits    int      `json:"credits" validate:"gte=0"`
	FacultyID  uint     `json:"faculty_id"`
	Classes    []string `json:"classes"`
	StartDate  string   `json:"start_date"` // YYYY-MM-DD or empty
	EndDate    string   `json:"end_date"`   // YYYY-MM-DD or empty
}

func (p *coursePayload) normalize() {
	p.CourseName = strings.Join(strings.Fields(p.CourseName), " ")
	seen := map[string]bool{}
	classes := make([]string, 0, len(p.Classes))
	for _, cl := range p.Classes {
		cl = strings.TrimSpace(cl)
		if cl == "" || seen[cl] {
			continue
		}
		seen[cl] = true
		classes = append(classes, cl)
	}
	p.Classes = classes
	p.StartDate = strings.TrimSpace(p.StartDate)
	p.EndDate = strings.TrimSpace(p.EndDate)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &d
}

// The two required fields; everything else is optional.
func validateCourse(p *coursePayload) map[string]string {
	errs := map[string]string{}
	if p.FacultyID == 0 {
		errs["faculty_id"] = "please select a faculty"
	}
	if p.CourseName == "" {
		errs["course_name"] = "course name is required"
	}
	for _, s := range []struct{ field, val string }{{"start_date", p.StartDate}, {"end_date", p.EndDate}} {
		if s.val == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", s.val); err != nil {
			errs[s.field] = "must be YYYY-MM-DD or empty"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// GET /courses?q= — scoped by role: students see courses offered to their
// class, faculty their own courses, admin everything.
func (h *CourseHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))

	tx := h.DB.Model(&models.Course{}).Preload("Classes").Distinct("courses.*")

	switch sessionRole(c) {
	case models.RoleStudent:
		var s models.Student
		if err := h.DB.Where("user_id = ?", sessionUserID(c)).First(&s).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		tx = tx.Joins("JOIN course_classes own ON own.course_id = courses.id").
			Where("own.name = ?", s.Class)
	case models.RoleFaculty:
		var f models.Faculty
		if err := h.DB.Where("user_id = ?", sessionUserID(c)).First(&f).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "FACULTY_NOT_FOUND"})
		}
		tx = tx.Joins("JOIN faculty_courses fc ON fc.course_id = courses.id").
			Where("fc.faculty_id = ?", f.ID)
	}

	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Joins("LEFT JOIN course_classes cc ON cc.course_id = courses.id").
			Joins("LEFT JOIN faculties fa ON fa.id = courses.faculty_id").
			Where("LOWER(courses.course_name) LIKE ? OR LOWER(cc.name) LIKE ? OR LOWER(fa.faculty_name) LIKE ?",
				like, like, like)
	}

	var courses []models.Course
	if err := tx.Order("courses.id ASC").Find(&courses).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, courses)
}

// GET /courses/:id
func (h *CourseHandler) Get(c echo.Context) error {
	var course models.Course
	if err := h.DB.Preload("Classes").First(&course, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, course)
}

// POST /courses
func (h *CourseHandler) Create(c echo.Context) error {
	var p coursePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateCourse(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	var cnt int64
	if err := h.DB.Model(&models.Faculty{}).Where("id = ?", p.FacultyID).Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if cnt == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "FACULTY_NOT_FOUND"})
	}

	var course models.Course
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		course = models.Course{
			CourseName: p.CourseName,
			Credits:    p.Credits,
			FacultyID:  p.FacultyID,
			StartDate:  parseDate(p.StartDate),
			EndDate:    parseDate(p.EndDate),
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		for _, cl := range p.Classes {
			if err := tx.Create(&models.CourseClass{CourseID: course.ID, Name: cl}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.FacultyCourse{FacultyID: p.FacultyID, CourseID: course.ID}).Error
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	if err := h.DB.Preload("Classes").First(&course, course.ID).Error; err == nil {
		return c.JSON(http.StatusCreated, course)
	}
	return c.JSON(http.StatusCreated, course)
}

// PUT /courses/:id — re-syncs class labels and the assignment mirror.
func (h *CourseHandler) Update(c echo.Context) error {
	var course models.Course
	if err := h.DB.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var p coursePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateCourse(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	var cnt int64
	if err := h.DB.Model(&models.Faculty{}).Where("id = ?", p.FacultyID).Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if cnt == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "FACULTY_NOT_FOUND"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if course.FacultyID != p.FacultyID {
			if err := tx.Delete(&models.FacultyCourse{}, "course_id = ?", course.ID).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.FacultyCourse{FacultyID: p.FacultyID, CourseID: course.ID}).Error; err != nil {
				return err
			}
		}

		course.CourseName = p.CourseName
		course.Credits = p.Credits
		course.FacultyID = p.FacultyID
		course.StartDate = parseDate(p.StartDate)
		course.EndDate = parseDate(p.EndDate)
		if err := tx.Save(&course).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.CourseClass{}, "course_id = ?", course.ID).Error; err != nil {
			return err
		}
		for _, cl := range p.Classes {
			if err := tx.Create(&models.CourseClass{CourseID: course.ID, Name: cl}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	if err := h.DB.Preload("Classes").First(&course, course.ID).Error; err == nil {
		return c.JSON(http.StatusOK, course)
	}
	return c.JSON(http.StatusOK, course)
}

// DELETE /courses/:id — refused while enrollments exist.
func (h *CourseHandler) Delete(c echo.Context) error {
	var course models.Course
	if err := h.DB.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var cnt int64
	if err := h.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "COURSE_HAS_ENROLLMENTS"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Schedule{}, "course_id = ?", course.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Attendance{}, "course_id = ?", course.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.CourseClass{}, "course_id = ?", course.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.FacultyCourse{}, "course_id = ?", course.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /courses/:id/classes — dropdown feed of the course's class labels.
func (h *CourseHandler) Classes(c echo.Context) error {
	id := atoiOr(c.Param("id"), 0)
	if id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	var names []string
	if err := h.DB.Model(&models.CourseClass{}).
		Where("course_id = ?", id).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, names)
}
