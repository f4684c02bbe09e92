package handlers

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Shared payload validator (struct tags). Domain rules that don't fit a tag
// are checked by hand next to their handler.
var validate = validator.New()

// fieldErrors flattens validator output into a field → message map for the
// standard VALIDATION_ERROR response body.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out[strings.ToLower(fe.Field())] = fe.Tag()
		}
		return out
	}
	out["payload"] = err.Error()
	return out
}

// atoiOr parses s, falling back to def when it is empty or malformed.
func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Identity claims attached by middlewares.RequireAuth.
func sessionUserID(c echo.Context) uint {
	id, _ := c.Get("user_id").(uint)
	return id
}

func sessionRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

func sessionUsername(c echo.Context) string {
	name, _ := c.Get("username").(string)
	return name
}

// Account emails must live under the institution's mail domain.
const emailDomain = "@gmail.com"

func emailOK(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), emailDomain)
}

func usernameOK(username string) bool {
	return len(username) >= 4
}

// passwordOK wants at least 8 characters mixing upper case, lower case and
// digits.
func passwordOK(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
