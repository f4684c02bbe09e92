package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/models"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthHandler struct {
	DB     *gorm.DB
	Secret string
	Cookie string
}

func NewAuthHandler(db *gorm.DB, secret, cookie string) *AuthHandler {
	return &AuthHandler{DB: db, Secret: secret, Cookie: cookie}
}

func (h *AuthHandler) signToken(sub uint, username, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      sub,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.Secret))
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var u models.User
	if err := h.DB.Where("username = ?", username).First(&u).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	if u.Status == 0 {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "ACCOUNT_DISABLED"})
	}

	token, err := h.signToken(u.ID, u.Username, u.Role, sessionTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "TOKEN_GEN_FAILED"})
	}

	c.SetCookie(&http.Cookie{
		Name:     h.Cookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logrus.WithFields(logrus.Fields{"user": u.Username, "role": u.Role}).Info("login")

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": u.ID, "username": u.Username, "role": u.Role},
	})
}

// POST /auth/logout — clears the session cookie along with any other cookie
// the request carried.
func (h *AuthHandler) Logout(c echo.Context) error {
	seen := map[string]bool{}
	for _, ck := range append(c.Cookies(), &http.Cookie{Name: h.Cookie}) {
		if seen[ck.Name] {
			continue
		}
		seen[ck.Name] = true
		c.SetCookie(&http.Cookie{
			Name:     ck.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"id":       sessionUserID(c),
		"username": sessionUsername(c),
		"role":     sessionRole(c),
	})
}

// PUT /auth/password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}
	if !passwordOK(req.NewPassword) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"new_password": "must be 8+ characters with upper, lower and digit"},
		})
	}

	var u models.User
	if err := h.DB.First(&u, sessionUserID(c)).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "NOT_AUTHENTICATED"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "WRONG_PASSWORD"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_ERROR"})
	}
	u.PasswordHash = string(hash)
	if err := h.DB.Save(&u).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_SAVE_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
