// scripts/create_admin.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/config"
	"github.com/HongAnh0929/ASM2-APDP/database"
	"github.com/HongAnh0929/ASM2-APDP/models"
)

func main() {
	cfg := config.Load()
	database.Connect(cfg)

	username := envOr("ADMIN_USERNAME", "admin")
	password := envOr("ADMIN_PASSWORD", "Admin123")
	email := envOr("ADMIN_EMAIL", "admin@gmail.com")

	var existing models.User
	if err := database.DB.Where("username = ?", username).First(&existing).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logrus.Fatalf("failed to query users: %v", err)
		}
	} else {
		fmt.Println("admin user already exists with username:", username)
		os.Exit(0)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatalf("failed to hash password: %v", err)
	}

	u := models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Email:        email,
		Role:         models.RoleAdmin,
	}
	if err := database.DB.Create(&u).Error; err != nil {
		logrus.Fatalf("failed to insert admin: %v", err)
	}
	fmt.Printf("admin user created (id=%d username=%s)\n", u.ID, u.Username)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
