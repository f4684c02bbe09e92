package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

func TestEnrollmentCreate(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewEnrollmentHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "Math", f.ID, "A")
	stu := seedStudent(t, db, "An Nguyen", "A")

	c, rec := newRequest(t, e, http.MethodPost, "/enrollments",
		map[string]any{"student_id": stu.ID, "course_id": course.ID})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var cnt int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", stu.ID, course.ID).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestEnrollmentCreateErrors(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewEnrollmentHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "Math", f.ID, "A")
	stu := seedStudent(t, db, "An Nguyen", "A")
	require.NoError(t, db.Create(&models.Enrollment{StudentID: stu.ID, CourseID: course.ID}).Error)

	cases := []struct {
		name string
		body map[string]any
		code int
		msg  string
	}{
		{"missing ids", map[string]any{"student_id": 0, "course_id": 0}, http.StatusBadRequest, "MISSING_FIELDS"},
		{"unknown student", map[string]any{"student_id": 99, "course_id": course.ID}, http.StatusNotFound, "STUDENT_NOT_FOUND"},
		{"unknown course", map[string]any{"student_id": stu.ID, "course_id": 99}, http.StatusNotFound, "COURSE_NOT_FOUND"},
		{"duplicate", map[string]any{"student_id": stu.ID, "course_id": course.ID}, http.StatusConflict, "ALREADY_ENROLLED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newRequest(t, e, http.MethodPost, "/enrollments", tc.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, decodeBody(t, rec)["error"])
		})
	}

	var cnt int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestEnrollmentListFilters(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewEnrollmentHandler(db)
	f := seedFaculty(t, db, "IT")
	math := seedCourse(t, db, "Math", f.ID, "A")
	physics := seedCourse(t, db, "Physics", f.ID, "A")
	an := seedStudent(t, db, "An Nguyen", "A")
	binh := seedStudent(t, db, "Binh Tran", "A")
	for _, pair := range []models.Enrollment{
		{StudentID: an.ID, CourseID: math.ID},
		{StudentID: an.ID, CourseID: physics.ID},
		{StudentID: binh.ID, CourseID: math.ID},
	} {
		require.NoError(t, db.Create(&pair).Error)
	}

	c, rec := newRequest(t, e, http.MethodGet, "/enrollments?student_id=1", nil)
	require.NoError(t, h.List(c))
	var items []models.Enrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	c, rec = newRequest(t, e, http.MethodGet, "/enrollments?course_id=1", nil)
	require.NoError(t, h.List(c))
	items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	c, rec = newRequest(t, e, http.MethodGet, "/enrollments?student_id=2&course_id=1", nil)
	require.NoError(t, h.List(c))
	items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, binh.ID, items[0].StudentID)
}

func TestEnrollmentDelete(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewEnrollmentHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "Math", f.ID, "A")
	stu := seedStudent(t, db, "An Nguyen", "A")
	require.NoError(t, db.Create(&models.Enrollment{StudentID: stu.ID, CourseID: course.ID}).Error)

	c, rec := newRequest(t, e, http.MethodDelete, "/enrollments/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var cnt int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

// Auto-enroll pairs every student of a class with every course offered to it
// and is idempotent on rerun.
func TestAutoEnrollByClass(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewEnrollmentHandler(db)
	f := seedFaculty(t, db, "IT")
	seedCourse(t, db, "Math", f.ID, "SE001")
	seedCourse(t, db, "Physics", f.ID, "SE001")
	seedCourse(t, db, "Accounting", f.ID, "BA001")
	seedStudent(t, db, "An Nguyen", "SE001")
	seedStudent(t, db, "Binh Tran", "SE001")
	seedStudent(t, db, "Chi Le", "BA001")

	c, rec := newRequest(t, e, http.MethodPost, "/enrollments/auto-by-class",
		map[string]any{"class": "SE001"})
	require.NoError(t, h.AutoEnrollByClass(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["students"])
	assert.EqualValues(t, 2, body["courses"])
	assert.EqualValues(t, 4, body["created"])

	var cnt int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&cnt).Error)
	assert.EqualValues(t, 4, cnt)

	// rerun creates nothing new
	c, rec = newRequest(t, e, http.MethodPost, "/enrollments/auto-by-class",
		map[string]any{"class": "SE001"})
	require.NoError(t, h.AutoEnrollByClass(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["created"])

	require.NoError(t, db.Model(&models.Enrollment{}).Count(&cnt).Error)
	assert.EqualValues(t, 4, cnt)
}

func TestAutoEnrollRequiresClass(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewEnrollmentHandler(db)

	c, rec := newRequest(t, e, http.MethodPost, "/enrollments/auto-by-class",
		map[string]any{"class": "  "})
	require.NoError(t, h.AutoEnrollByClass(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CLASS_REQUIRED", decodeBody(t, rec)["error"])
}
