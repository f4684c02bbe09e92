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

func TestCourseListReturnsAll(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)

	f := seedFaculty(t, db, "IT")
	seedCourse(t, db, "Math", f.ID, "A")
	seedCourse(t, db, "Physics", f.ID, "B")

	c, rec := newRequest(t, e, http.MethodGet, "/courses", nil)
	asRole(c, 1, "admin", models.RoleAdmin)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var courses []models.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	assert.Len(t, courses, 2)
}

func TestCourseListScopedByRole(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)

	fIT := seedFaculty(t, db, "IT")
	fBiz := seedFaculty(t, db, "Business")
	seedCourse(t, db, "Programming", fIT.ID, "SE001")
	seedCourse(t, db, "Accounting", fBiz.ID, "BA001")
	stu := seedStudent(t, db, "An Nguyen", "SE001")

	// student only sees courses offered to their class
	c, rec := newRequest(t, e, http.MethodGet, "/courses", nil)
	asRole(c, stu.UserID, "an.nguyen", models.RoleStudent)
	require.NoError(t, h.List(c))
	var courses []models.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Programming", courses[0].CourseName)

	// faculty only sees their assignments
	c, rec = newRequest(t, e, http.MethodGet, "/courses", nil)
	asRole(c, fBiz.UserID, "business.staff", models.RoleFaculty)
	require.NoError(t, h.List(c))
	courses = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Accounting", courses[0].CourseName)
}

func TestCourseCreateValid(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")

	c, rec := newRequest(t, e, http.MethodPost, "/courses", map[string]any{
		"course_name": "Programming",
		"credits":     3,
		"faculty_id":  f.ID,
		"classes":     []string{"SE001"},
	})
	asRole(c, 1, "admin", models.RoleAdmin)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var courses []models.Course
	require.NoError(t, db.Find(&courses).Error)
	require.Len(t, courses, 1)
	assert.Equal(t, "Programming", courses[0].CourseName)
	assert.Equal(t, 3, courses[0].Credits)
	assert.Equal(t, f.ID, courses[0].FacultyID)

	var classes []models.CourseClass
	require.NoError(t, db.Where("course_id = ?", courses[0].ID).Find(&classes).Error)
	require.Len(t, classes, 1)
	assert.Equal(t, "SE001", classes[0].Name)

	// the assignment mirror row is written alongside
	var cnt int64
	require.NoError(t, db.Model(&models.FacultyCourse{}).
		Where("faculty_id = ? AND course_id = ?", f.ID, courses[0].ID).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestCourseCreateInvalid(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)

	for _, body := range []map[string]any{
		{"course_name": "", "credits": 3, "faculty_id": 1},
		{"course_name": "Math", "credits": 3, "faculty_id": 0},
	} {
		c, rec := newRequest(t, e, http.MethodPost, "/courses", body)
		asRole(c, 1, "admin", models.RoleAdmin)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rec)["error"])
	}

	var cnt int64
	require.NoError(t, db.Model(&models.Course{}).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

func TestCourseGetAndUpdate(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "OldName", f.ID, "SE001")

	c, rec := newRequest(t, e, http.MethodGet, "/courses/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newRequest(t, e, http.MethodPut, "/courses/1", map[string]any{
		"course_name": "NewName",
		"credits":     4,
		"faculty_id":  f.ID,
		"classes":     []string{"SE002"},
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	asRole(c, 1, "admin", models.RoleAdmin)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, "NewName", updated.CourseName)
	assert.Equal(t, 4, updated.Credits)

	var names []string
	require.NoError(t, db.Model(&models.CourseClass{}).
		Where("course_id = ?", course.ID).Pluck("name", &names).Error)
	assert.Equal(t, []string{"SE002"}, names)
}

func TestCourseUpdateUnknownFaculty(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "Math", f.ID, "A")

	c, rec := newRequest(t, e, http.MethodPut, "/courses/1", map[string]any{
		"course_name": "Math",
		"credits":     3,
		"faculty_id":  999,
		"classes":     []string{"A"},
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "FACULTY_NOT_FOUND", decodeBody(t, rec)["error"])

	// both the course and its assignment mirror still point at the real
	// faculty
	var after models.Course
	require.NoError(t, db.First(&after, course.ID).Error)
	assert.Equal(t, f.ID, after.FacultyID)

	var cnt int64
	require.NoError(t, db.Model(&models.FacultyCourse{}).
		Where("course_id = ? AND faculty_id = ?", course.ID, f.ID).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
	require.NoError(t, db.Model(&models.FacultyCourse{}).
		Where("faculty_id = ?", 999).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

func TestCourseUpdateMissing(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)

	c, rec := newRequest(t, e, http.MethodPut, "/courses/99", map[string]any{
		"course_name": "X", "credits": 1, "faculty_id": 1,
	})
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseDeleteWithoutEnrollments(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "TestCourse", f.ID, "SE001")

	c, rec := newRequest(t, e, http.MethodDelete, "/courses/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var cnt int64
	require.NoError(t, db.Model(&models.Course{}).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
	require.NoError(t, db.Model(&models.CourseClass{}).Where("course_id = ?", course.ID).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

func TestCourseDeleteRejectedWhileEnrolled(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")
	course := seedCourse(t, db, "Math", f.ID, "A")
	stu := seedStudent(t, db, "An Nguyen", "A")
	require.NoError(t, db.Create(&models.Enrollment{StudentID: stu.ID, CourseID: course.ID}).Error)

	c, rec := newRequest(t, e, http.MethodDelete, "/courses/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "COURSE_HAS_ENROLLMENTS", decodeBody(t, rec)["error"])

	var cnt int64
	require.NoError(t, db.Model(&models.Course{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

// Admin adds a faculty and a course, sees it listed, deletes it, list is
// empty again.
func TestCourseAdminLifecycle(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")

	c, rec := newRequest(t, e, http.MethodPost, "/courses", map[string]any{
		"course_name": "Math",
		"credits":     3,
		"faculty_id":  f.ID,
		"classes":     []string{"A"},
	})
	asRole(c, 1, "admin", models.RoleAdmin)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newRequest(t, e, http.MethodGet, "/courses", nil)
	asRole(c, 1, "admin", models.RoleAdmin)
	require.NoError(t, h.List(c))
	var courses []models.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 1)

	c, rec = newRequest(t, e, http.MethodDelete, "/courses/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newRequest(t, e, http.MethodGet, "/courses", nil)
	asRole(c, 1, "admin", models.RoleAdmin)
	require.NoError(t, h.List(c))
	courses = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	assert.Empty(t, courses)
}

func TestCourseClassesFeed(t *testing.T) {
	db := setupDB(t)
	e := echo.New()
	h := NewCourseHandler(db)
	f := seedFaculty(t, db, "IT")
	seedCourse(t, db, "Math", f.ID, "B", "A")

	c, rec := newRequest(t, e, http.MethodGet, "/courses/1/classes", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Classes(c))

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"A", "B"}, names)
}
