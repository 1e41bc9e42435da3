package main

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"detailbook/internal/database"
	"detailbook/internal/domain"
)

// Dev-only seed: wipes the database and loads a small working data set.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "detailbook.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup in FK-safe order.
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM booking_status_histories")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM time_slots")
	db.Exec("DELETE FROM services")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")
	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@detailbook.local",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		FullName:     "Site Admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("create admin:", err)
	}

	customerHash, _ := bcrypt.GenerateFromPassword([]byte("customer123"), bcrypt.DefaultCost)
	customer := domain.User{
		Email:        "customer@example.com",
		PasswordHash: string(customerHash),
		Role:         domain.RoleCustomer,
		FullName:     "Test Customer",
		Phone:        "+1 555 0100",
	}
	if err := db.Create(&customer).Error; err != nil {
		log.Fatal("create customer:", err)
	}

	log.Println("Creating services...")
	services := []domain.Service{
		{Name: "Exterior Wash", Description: "Hand wash, wheels and tire shine", Price: 49, DurationMinutes: 60, Active: true},
		{Name: "Interior Detail", Description: "Vacuum, steam clean, leather treatment", Price: 129, DurationMinutes: 120, Active: true},
		{Name: "Full Detail", Description: "Complete interior and exterior detail", Price: 219, DurationMinutes: 180, Active: true},
		{Name: "Ceramic Coat", Description: "Paint correction and ceramic coating", Price: 649, DurationMinutes: 240, Active: true},
	}
	for i := range services {
		if err := db.Create(&services[i]).Error; err != nil {
			log.Fatal("create service:", err)
		}
	}

	log.Println("Creating time slots...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	count := 0
	for day := 1; day <= 7; day++ {
		date := today.AddDate(0, 0, day)
		if date.Weekday() == time.Sunday {
			continue
		}
		for hour := 9; hour < 17; hour += 2 {
			start := date.Add(time.Duration(hour) * time.Hour)
			slot := domain.TimeSlot{
				Date:        date,
				StartTime:   start,
				EndTime:     start.Add(2 * time.Hour),
				IsAvailable: true,
				CreatedBy:   &admin.ID,
			}
			if err := db.Create(&slot).Error; err != nil {
				log.Fatal("create slot:", err)
			}
			count++
		}
	}

	log.Printf("Seed complete: 2 users, %d services, %d slots", len(services), count)
}
