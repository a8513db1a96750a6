package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userboard/internal/config"
	"userboard/internal/db"
	"userboard/internal/model"
	"userboard/internal/repository"
)

const bcryptCost = 10

// demoUser is a seed record; passwords are hashed before insert.
type demoUser struct {
	Username string
	Email    string
	Password string
}

var demoUsers = []demoUser{
	{Username: "alice", Email: "alice@example.com", Password: "alice-pass"},
	{Username: "bob", Email: "bob@example.com", Password: "bob-pass"},
	{Username: "carol", Email: "carol@example.com", Password: "carol-pass"},
	{Username: "dave", Email: "dave@example.com", Password: "dave-pass"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	created, skipped := 0, 0
	for _, d := range demoUsers {
		if _, err := userRepo.FindByEmail(ctx, d.Email); err == nil {
			log.Printf("Skipping %s, email already present", d.Email)
			skipped++
			continue
		} else if err != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check %s: %v", d.Email, err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcryptCost)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", d.Email, err)
		}

		user := &model.User{
			Username:     d.Username,
			Email:        d.Email,
			PasswordHash: string(hashed),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create %s: %v", d.Email, err)
		}
		created++
	}

	log.Printf("Seed completed: %d created, %d skipped", created, skipped)
}
