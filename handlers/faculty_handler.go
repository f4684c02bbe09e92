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

type FacultyHandler struct {
	DB *gorm.DB
}

func NewFacultyHandler(db *gorm.DB) *FacultyHandler { return &FacultyHandler{DB: db} }

type facultyPayload struct {
	FacultyName string `json:"faculty_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Department  string `json:"department"`
	Phone       string `json:"phone"`
	HireDate    string `json:"hire_date"` // YYYY-MM-DD or empty
}

type createFacultyReq struct {
	facultyPayload
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateFacultyReq struct {
	facultyPayload
	NewUsername string `json:"new_username"`
	NewPassword string `json:"new_password"`
	UserID      *uint  `json:"user_id"`
}

func (p *facultyPayload) normalize() {
	p.FacultyName = strings.Join(strings.Fields(p.FacultyName), " ")
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Department = strings.TrimSpace(p.Department)
	p.Phone = strings.TrimSpace(p.Phone)
	p.HireDate = strings.TrimSpace(p.HireDate)
}

func (p *facultyPayload) hireDate() *time.Time {
	if p.HireDate == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", p.HireDate)
	if err != nil {
		return nil
	}
	return &d
}

func validateFaculty(p *facultyPayload) map[string]string {
	if err := validate.Struct(p); err != nil {
		return fieldErrors(err)
	}
	errs := map[string]string{}
	if !emailOK(p.Email) {
		errs["email"] = "email must end with " + emailDomain
	}
	if p.HireDate != "" {
		if _, err := time.Parse("2006-01-02", p.HireDate); err != nil {
			errs["hire_date"] = "hire_date must be YYYY-MM-DD or empty"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// facultyForUser resolves the faculty profile behind the session account.
func (h *FacultyHandler) facultyForUser(c echo.Context) (*models.Faculty, error) {
	var f models.Faculty
	if err := h.DB.Where("user_id = ?", sessionUserID(c)).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// GET /faculty?q=
func (h *FacultyHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))

	tx := h.DB.Model(&models.Faculty{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Joins("LEFT JOIN users u ON u.id = faculties.user_id").
			Where("LOWER(faculties.faculty_name) LIKE ? OR LOWER(faculties.email) LIKE ? OR LOWER(faculties.department) LIKE ? OR LOWER(u.username) LIKE ?",
				like, like, like, like)
	}

	var items []models.Faculty
	if err := tx.Order("faculties.id ASC").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

// GET /faculty/:id
func (h *FacultyHandler) Get(c echo.Context) error {
	var f models.Faculty
	if err := h.DB.First(&f, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, f)
}

// POST /faculty — the username either links an existing account or creates
// a new faculty-role one (a password is then required).
func (h *FacultyHandler) Create(c echo.Context) error {
	var req createFacultyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.normalize()
	req.Username = strings.TrimSpace(req.Username)

	if errs := validateFaculty(&req.facultyPayload); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}
	if !usernameOK(req.Username) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"username": "must be at least 4 characters"},
		})
	}

	var f models.Faculty
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var u models.User
		err := tx.Where("username = ?", req.Username).First(&u).Error
		switch {
		case err == nil:
			// link the existing account
		case err == gorm.ErrRecordNotFound:
			if !passwordOK(req.Password) {
				return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
					"error":  "VALIDATION_ERROR",
					"fields": map[string]string{"password": "required for a new account: 8+ characters with upper, lower and digit"},
				})
			}
			hash, herr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if herr != nil {
				return herr
			}
			u = models.User{
				Username:     req.Username,
				PasswordHash: string(hash),
				Email:        req.Email,
				Role:         models.RoleFaculty,
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
		default:
			return err
		}

		f = models.Faculty{
			FacultyName: req.FacultyName,
			Email:       req.Email,
			Department:  req.Department,
			Phone:       req.Phone,
			HireDate:    req.hireDate(),
			UserID:      u.ID,
		}
		return tx.Create(&f).Error
	})
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, f)
}

// PUT /faculty/:id
func (h *FacultyHandler) Update(c echo.Context) error {
	var f models.Faculty
	if err := h.DB.First(&f, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var req updateFacultyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.normalize()
	req.NewUsername = strings.TrimSpace(req.NewUsername)

	if errs := validateFaculty(&req.facultyPayload); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}
	if req.NewPassword != "" && !passwordOK(req.NewPassword) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"new_password": "must be 8+ characters with upper, lower and digit"},
		})
	}

	f.FacultyName = req.FacultyName
	f.Email = req.Email
	f.Department = req.Department
	f.Phone = req.Phone
	if d := req.hireDate(); d != nil {
		f.HireDate = d
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.NewUsername != "" {
			// rename the linked account, or create one if the profile has none
			var u models.User
			if err := tx.First(&u, "id = ?", f.UserID).Error; err == nil {
				u.Username = req.NewUsername
				if req.NewPassword != "" {
					hash, herr := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
					if herr != nil {
						return herr
					}
					u.PasswordHash = string(hash)
				}
				if err := tx.Save(&u).Error; err != nil {
					return err
				}
			} else {
				if !passwordOK(req.NewPassword) {
					return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
						"error":  "VALIDATION_ERROR",
						"fields": map[string]string{"new_password": "required for a new account: 8+ characters with upper, lower and digit"},
					})
				}
				hash, herr := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
				if herr != nil {
					return herr
				}
				u = models.User{
					Username:     req.NewUsername,
					PasswordHash: string(hash),
					Email:        f.Email,
					Role:         models.RoleFaculty,
				}
				if err := tx.Create(&u).Error; err != nil {
					return err
				}
				f.UserID = u.ID
			}
		} else if req.UserID != nil {
			f.UserID = *req.UserID
		}
		return tx.Save(&f).Error
	})
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, f)
}

// DELETE /faculty/:id — removes the profile together with its courses and
// account; refused while any of those courses still has enrollments.
func (h *FacultyHandler) Delete(c echo.Context) error {
	var f models.Faculty
	if err := h.DB.First(&f, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var courseIDs []uint
	if err := h.DB.Model(&models.Course{}).Where("faculty_id = ?", f.ID).Pluck("id", &courseIDs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	if len(courseIDs) > 0 {
		var cnt int64
		if err := h.DB.Model(&models.Enrollment{}).Where("course_id IN ?", courseIDs).Count(&cnt).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
		}
		if cnt > 0 {
			return c.JSON(http.StatusConflict, map[string]any{"error": "FACULTY_COURSES_HAVE_ENROLLMENTS"})
		}
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(courseIDs) > 0 {
			if err := tx.Delete(&models.Schedule{}, "course_id IN ?", courseIDs).Error; err != nil {
				return err
			}
			// attendance can outlive enrollments, so the zero-enrollment
			// guard above does not cover it
			if err := tx.Delete(&models.Attendance{}, "course_id IN ?", courseIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.CourseClass{}, "course_id IN ?", courseIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Course{}, "id IN ?", courseIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.FacultyCourse{}, "faculty_id = ?", f.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&f).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", f.UserID).Error
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /faculty/courses — admin sees every course, faculty their own
// assignments.
func (h *FacultyHandler) AssignedCourses(c echo.Context) error {
	var courses []models.Course

	if sessionRole(c) == models.RoleAdmin {
		if err := h.DB.Preload("Classes").Order("id ASC").Find(&courses).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
		}
		return c.JSON(http.StatusOK, courses)
	}

	f, err := h.facultyForUser(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "FACULTY_NOT_FOUND"})
	}
	err = h.DB.Preload("Classes").
		Joins("JOIN faculty_courses fc ON fc.course_id = courses.id").
		Where("fc.faculty_id = ?", f.ID).
		Order("courses.id ASC").
		Find(&courses).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, courses)
}

// GET /faculty/courses/:courseId/attendance?date=YYYY-MM-DD
// Roster of enrolled students plus the marks already recorded for the date.
func (h *FacultyHandler) AttendanceSheet(c echo.Context) error {
	courseID := atoiOr(c.Param("courseId"), 0)
	if courseID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
	}

	course, he := h.courseForSession(c, uint(courseID))
	if he != nil {
		return c.JSON(he.Code, he.Message)
	}

	var students []models.Student
	err := h.DB.Model(&models.Student{}).
		Joins("JOIN enrollments e ON e.student_id = students.id").
		Where("e.course_id = ?", course.ID).
		Order("students.full_name ASC").
		Find(&students).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	var marks []models.Attendance
	if err := h.DB.Where("course_id = ? AND date = ?", course.ID, date).Find(&marks).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	present := make(map[uint]bool, len(marks))
	for _, m := range marks {
		present[m.StudentID] = m.Present
	}

	return c.JSON(http.StatusOK, map[string]any{
		"course":   course,
		"date":     date,
		"students": students,
		"present":  present,
	})
}

type recordAttendanceReq struct {
	CourseID          uint   `json:"course_id"`
	Date              string `json:"date"`
	PresentStudentIDs []uint `json:"present_student_ids"`
}

// POST /faculty/attendance — upserts one mark per enrolled student for the
// given date.
func (h *FacultyHandler) RecordAttendance(c echo.Context) error {
	var req recordAttendanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if req.CourseID == 0 || req.Date == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
	}

	course, he := h.courseForSession(c, req.CourseID)
	if he != nil {
		return c.JSON(he.Code, he.Message)
	}

	var recorder *uint
	if sessionRole(c) == models.RoleFaculty {
		if f, err := h.facultyForUser(c); err == nil {
			id := f.ID
			recorder = &id
		}
	}

	presentSet := make(map[uint]bool, len(req.PresentStudentIDs))
	for _, id := range req.PresentStudentIDs {
		presentSet[id] = true
	}

	var studentIDs []uint
	if err := h.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Pluck("student_id", &studentIDs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, sid := range studentIDs {
			var existing models.Attendance
			err := tx.Where("course_id = ? AND student_id = ? AND date = ?", course.ID, sid, req.Date).
				First(&existing).Error
			switch {
			case err == nil:
				existing.Present = presentSet[sid]
				existing.FacultyID = recorder
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			case err == gorm.ErrRecordNotFound:
				rec := models.Attendance{
					StudentID: sid,
					CourseID:  course.ID,
					Date:      req.Date,
					Present:   presentSet[sid],
					FacultyID: recorder,
				}
				if err := tx.Create(&rec).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"marked": len(studentIDs), "date": req.Date})
}

// GET /faculty/students — the academic-record listing.
func (h *FacultyHandler) Students(c echo.Context) error {
	var students []models.Student
	if err := h.DB.Order("full_name ASC").Find(&students).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, students)
}

// courseForSession loads a course, restricting faculty callers to courses
// assigned to them.
func (h *FacultyHandler) courseForSession(c echo.Context, courseID uint) (*models.Course, *echo.HTTPError) {
	var course models.Course
	if err := h.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "COURSE_NOT_FOUND"})
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	if sessionRole(c) == models.RoleFaculty {
		f, err := h.facultyForUser(c)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "FACULTY_NOT_FOUND"})
		}
		var cnt int64
		if err := h.DB.Model(&models.FacultyCourse{}).
			Where("faculty_id = ? AND course_id = ?", f.ID, course.ID).
			Count(&cnt).Error; err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
		}
		if cnt == 0 {
			return nil, echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "NOT_ASSIGNED"})
		}
	}
	return &course, nil
}
