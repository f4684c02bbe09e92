package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/HongAnh0929/ASM2-APDP/config"
	"github.com/HongAnh0929/ASM2-APDP/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		logrus.Fatalf("auto migrate failed: %v", err)
	}
	logrus.Infof("database %s ready", cfg.DBName)
}

// Migrate creates or updates the whole schema. Tests run it against an
// in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Faculty{},
		&models.Course{},
		&models.CourseClass{},
		&models.FacultyCourse{},
		&models.Enrollment{},
		&models.Attendance{},
		&models.Schedule{},
	)
}
