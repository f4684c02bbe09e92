package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

type StudentHandler struct {
	DB *gorm.DB
}

func NewStudentHandler(db *gorm.DB) *StudentHandler { return &StudentHandler{DB: db} }

// Profile fields shared by create and update.
type studentPayload struct {
	FullName         string  `json:"full_name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Major            string  `json:"major"`
	Gender           string  `json:"gender"`
	Dob              string  `json:"dob"` // YYYY-MM-DD or empty
	GPA              float64 `json:"gpa" validate:"gte=0,lte=4"`
	AcademicStanding string  `json:"academic_standing"`
	Class            string  `json:"class" validate:"required"`
}

type createStudentReq struct {
	studentPayload
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p *studentPayload) normalize() {
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Major = strings.TrimSpace(p.Major)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Dob = strings.TrimSpace(p.Dob)
	p.AcademicStanding = strings.TrimSpace(p.AcademicStanding)
	p.Class = strings.TrimSpace(p.Class)
}

func (p *studentPayload) dob() *time.Time {
	if p.Dob == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", p.Dob)
	if err != nil {
		return nil
	}
	return &d
}

func validateStudent(p *studentPayload) map[string]string {
	if err := validate.Struct(p); err != nil {
		return fieldErrors(err)
	}
	errs := map[string]string{}
	if !emailOK(p.Email) {
		errs["email"] = "email must end with " + emailDomain
	}
	if p.Dob != "" {
		if _, err := time.Parse("2006-01-02", p.Dob); err != nil {
			errs["dob"] = "dob must be YYYY-MM-DD or empty"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// GET /students?q=
func (h *StudentHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))

	tx := h.DB.Model(&models.Student{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(class) LIKE ?", like, like, like)
	}

	var items []models.Student
	if err := tx.Order("id ASC").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

// GET /students/me — a student's own profile.
func (h *StudentHandler) Me(c echo.Context) error {
	var s models.Student
	if err := h.DB.Where("user_id = ?", sessionUserID(c)).First(&s).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
	}
	return c.JSON(http.StatusOK, s)
}

// GET /students/:id
func (h *StudentHandler) Get(c echo.Context) error {
	var s models.Student
	if err := h.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, s)
}

// POST /students — creates the login account first, then the profile.
func (h *StudentHandler) Create(c echo.Context) error {
	var req createStudentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.normalize()
	req.Username = strings.TrimSpace(req.Username)

	if errs := validateStudent(&req.studentPayload); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}
	if !usernameOK(req.Username) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"username": "must be at least 4 characters"},
		})
	}
	if !passwordOK(req.Password) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"password": "must be 8+ characters with upper, lower and digit"},
		})
	}

	var cnt int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_TAKEN"})
	}
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "EMAIL_TAKEN"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_ERROR"})
	}

	var s models.Student
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		u := models.User{
			Username:     req.Username,
			PasswordHash: string(hash),
			Email:        req.Email,
			Role:         models.RoleStudent,
		}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		s = models.Student{
			FullName:         req.FullName,
			Email:            req.Email,
			Major:            req.Major,
			Gender:           req.Gender,
			Dob:              req.dob(),
			GPA:              req.GPA,
			AcademicStanding: req.AcademicStanding,
			Class:            req.Class,
			UserID:           u.ID,
		}
		return tx.Create(&s).Error
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, s)
}

// PUT /students/:id — updates profile fields only; the linked user never
// changes here.
func (h *StudentHandler) Update(c echo.Context) error {
	var existing models.Student
	if err := h.DB.First(&existing, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var p studentPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateStudent(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	existing.FullName = p.FullName
	existing.Email = p.Email
	existing.Major = p.Major
	existing.Gender = p.Gender
	if d := p.dob(); d != nil {
		existing.Dob = d
	}
	existing.GPA = p.GPA
	existing.AcademicStanding = p.AcademicStanding
	existing.Class = p.Class

	if err := h.DB.Save(&existing).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, existing)
}

// DELETE /students/:id — removes the profile, its dependent rows and the
// login account.
func (h *StudentHandler) Delete(c echo.Context) error {
	var s models.Student
	if err := h.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Enrollment{}, "student_id = ?", s.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Attendance{}, "student_id = ?", s.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&s).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", s.UserID).Error
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
