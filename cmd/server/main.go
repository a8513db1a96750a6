package main

import (
	"log"
	"net/http"
	"os"

	_ "userboard/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"userboard/internal/cache"
	"userboard/internal/config"
	"userboard/internal/db"
	"userboard/internal/handler"
	"userboard/internal/model"
	"userboard/internal/repository"
	"userboard/internal/router"
	"userboard/internal/service"
)

// @title User Management API
// @version 1.0
// @description User management service: JSON CRUD API plus the list and create pages.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop the table if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping users table...")
		if err := gormDB.Migrator().DropTable(&model.User{}); err != nil {
			log.Printf("Warning: Failed to drop table (may not exist): %v", err)
		}
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	userService := service.NewUserService(userRepo, cacheClient)
	userHandler := handler.NewUserHandler(userService)

	router.Register(e, userHandler)

	addr := ":" + cfg.ServerPort
	log.Printf("listening on %s (UI at / and /createusers, docs at /swagger/index.html)", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
