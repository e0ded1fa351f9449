package main

import (
	"fmt"
	"log"
	"time"

	"srsevents/internal/events"
	"srsevents/internal/shared/config"
	"srsevents/internal/shared/database"
	"srsevents/internal/users"

	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting SRS Events database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.PostgreSQL); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.ApplyConstraints(db.PostgreSQL); err != nil {
		log.Fatalf("Failed to apply constraints: %v", err)
	}

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_qr_scans",
		"bookings",
		"events",
		"users",
	}

	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	admin, _, err := s.seedUsers()
	if err != nil {
		return err
	}
	if err := s.seedEvents(admin); err != nil {
		return err
	}
	return nil
}

func (s *Seeder) seedUsers() (*users.User, *users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password@123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash seed password: %w", err)
	}
	password := string(hash)

	membershipDate := time.Now().AddDate(-2, 0, 0)
	memberID := "SRS-M-1001"

	admin := &users.User{
		FirstName: "Asha",
		LastName:  "Pillai",
		Email:     "admin@srsevents.com",
		Phone:     "+919800000001",
		Password:  password,
		Role:      users.RoleAdmin,
	}
	member := &users.User{
		FirstName:      "Ravi",
		LastName:       "Shankar",
		Email:          "ravi.member@srsevents.com",
		Phone:          "+919800000002",
		Password:       password,
		Role:           users.RoleMember,
		MemberID:       &memberID,
		MembershipDate: &membershipDate,
	}
	regulars := []*users.User{
		{
			FirstName: "Priya",
			LastName:  "Nair",
			Email:     "priya@example.com",
			Phone:     "+919800000003",
			Password:  password,
			Role:      users.RoleUser,
		},
		{
			FirstName: "Karthik",
			LastName:  "Iyer",
			Email:     "karthik@example.com",
			Phone:     "+919800000004",
			Password:  password,
			Role:      users.RoleUser,
		},
	}

	all := append([]*users.User{admin, member}, regulars...)
	for _, u := range all {
		if err := s.db.PostgreSQL.Create(u).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create user %s: %w", u.Email, err)
		}
	}

	fmt.Printf("  created %d users (admin: %s, member: %s)\n", len(all), admin.Email, memberID)
	return admin, member, nil
}

func (s *Seeder) seedEvents(admin *users.User) error {
	now := time.Now()

	sample := []*events.Event{
		{
			Title:           "Onam Sadhya 2026",
			Description:     "Traditional feast with cultural programs and live music.",
			Category:        "cultural",
			Location:        "Community Hall, Marine Drive",
			Venue:           "Main Auditorium",
			StartDate:       now.AddDate(0, 1, 0),
			EndDate:         now.AddDate(0, 1, 0).Add(6 * time.Hour),
			HasRefreshments: true,
			UserPrice:       1500,
			MemberPrice:     1000,
			GuestPrice:      1800,
			KidPrice:        500,
			MaxCapacity:     400,
			Status:          events.StatusPublished,
			IsActive:        true,
			CreatedBy:       admin.ID,
		},
		{
			Title:       "New Year Gala",
			Description: "Ticketed gala dinner with DJ night.",
			Category:    "social",
			Location:    "Grand Ballroom, Bay View Hotel",
			Venue:       "Ballroom A",
			StartDate:   time.Date(now.Year(), 12, 31, 19, 0, 0, 0, time.Local),
			EndDate:     time.Date(now.Year()+1, 1, 1, 1, 0, 0, 0, time.Local),
			UserPrice:   3000,
			MemberPrice: 2500,
			GuestPrice:  3500,
			KidPrice:    1000,
			MaxCapacity: 250,
			Status:      events.StatusPublished,
			IsActive:    true,
			CreatedBy:   admin.ID,
		},
		{
			Title:       "Annual General Meeting",
			Description: "Members-only AGM, agenda to follow by mail.",
			Category:    "meeting",
			Location:    "Clubhouse",
			Venue:       "Conference Room",
			StartDate:   now.AddDate(0, 2, 0),
			EndDate:     now.AddDate(0, 2, 0).Add(3 * time.Hour),
			UserPrice:   0,
			MemberPrice: 0,
			GuestPrice:  0,
			MaxCapacity: 120,
			Status:      events.StatusDraft,
			IsActive:    true,
			CreatedBy:   admin.ID,
		},
	}

	for _, e := range sample {
		if err := s.db.PostgreSQL.Create(e).Error; err != nil {
			return fmt.Errorf("failed to create event %q: %w", e.Title, err)
		}
	}

	fmt.Printf("  created %d events\n", len(sample))
	return nil
}
