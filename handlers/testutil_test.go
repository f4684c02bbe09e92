package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/database"
	"github.com/HongAnh0929/ASM2-APDP/models"
)

// setupDB opens a fresh in-memory database for one test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newRequest builds an echo context carrying an optional JSON body.
func newRequest(t *testing.T, e *echo.Echo, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	return ctx, rec
}

// asRole attaches the identity claims RequireAuth would have set.
func asRole(c echo.Context, userID uint, username, role string) {
	c.Set("user_id", userID)
	c.Set("username", username)
	c.Set("role", role)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ----- seed helpers -----

const seedPassword = "Secret123"

func seedUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        username + "@gmail.com",
		Role:         role,
		Status:       1,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedFaculty(t *testing.T, db *gorm.DB, name string) models.Faculty {
	t.Helper()
	u := seedUser(t, db, strings.ToLower(name)+".staff", models.RoleFaculty)
	f := models.Faculty{
		FacultyName: name,
		Email:       strings.ToLower(name) + "@gmail.com",
		Department:  name,
		UserID:      u.ID,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}

func seedStudent(t *testing.T, db *gorm.DB, name, class string) models.Student {
	t.Helper()
	uname := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	u := seedUser(t, db, uname, models.RoleStudent)
	s := models.Student{
		FullName: name,
		Email:    uname + "@gmail.com",
		Class:    class,
		UserID:   u.ID,
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// seedCourse creates the course, its class labels and the assignment
// mirror row, the same rows CourseHandler.Create would write.
func seedCourse(t *testing.T, db *gorm.DB, name string, facultyID uint, classes ...string) models.Course {
	t.Helper()
	course := models.Course{CourseName: name, Credits: 3, FacultyID: facultyID}
	require.NoError(t, db.Create(&course).Error)
	for _, cl := range classes {
		require.NoError(t, db.Create(&models.CourseClass{CourseID: course.ID, Name: cl}).Error)
	}
	require.NoError(t, db.Create(&models.FacultyCourse{FacultyID: facultyID, CourseID: course.ID}).Error)
	return course
}
