package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/HongAnh0929/ASM2-APDP/config"
	"github.com/HongAnh0929/ASM2-APDP/database"
	"github.com/HongAnh0929/ASM2-APDP/routes"
)

func main() {
	cfg := config.Load()

	// fail fast when the database is unreachable
	database.Connect(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, database.DB, cfg)

	addr := ":" + cfg.AppPort
	logrus.Infof("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		logrus.Fatal(err)
	}
}
