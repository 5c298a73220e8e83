package main

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tourgether/internal/config"
	"tourgether/internal/db"
	"tourgether/internal/model"
	"tourgether/internal/repository"
)

type seedUser struct {
	name     string
	email    string
	password string
}

var seedUsers = []seedUser{
	{name: "Alice", email: "alice@example.com", password: "password123"},
	{name: "Bob", email: "bob@example.com", password: "password123"},
}

const demoGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="tourgether-seed">
  <trk><name>Demo loop</name><trkseg>
    <trkpt lat="48.1374" lon="11.5755"></trkpt>
    <trkpt lat="48.1401" lon="11.5832"></trkpt>
  </trkseg></trk>
</gpx>`

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Route{}, &model.RouteRider{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	routeRepo := repository.NewRouteRepository(gormDB)

	users := make([]*model.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		existing, err := userRepo.FindByEmail(ctx, su.email)
		if err == nil {
			log.Printf("User %s already exists, skipping", su.email)
			users = append(users, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", su.email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), 10)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		user := &model.User{
			Name:         su.name,
			Email:        su.email,
			PasswordHash: string(hash),
			IsVerified:   true, // seeded users skip the email round trip
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.email, err)
		}
		log.Printf("Created user %s (%s)", su.name, user.ID)
		users = append(users, user)
	}

	owner := users[0]
	route := &model.Route{
		Name:       "Isar morning loop",
		GPX:        demoGPX,
		OwnerID:    owner.ID,
		OwnerName:  owner.Name,
		StartTime:  time.Now().Add(48 * time.Hour).Truncate(time.Hour),
		StartPoint: "48.1374, 11.5755",
	}
	if err := routeRepo.Create(ctx, route); err != nil {
		log.Fatalf("Failed to create route: %v", err)
	}
	log.Printf("Created route %s (%s)", route.Name, route.ID)

	if len(users) > 1 {
		if _, err := routeRepo.AddRider(ctx, route.ID, users[1].ID); err != nil {
			log.Fatalf("Failed to add rider: %v", err)
		}
		log.Printf("Registered %s on %s", users[1].Name, route.Name)
	}

	log.Println("Seed completed")
}
