package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/tirestock-platform/api/internal/domain"
)

// Seeds a small dev dataset: a handful of tires in stock, a few fleet
// vehicles, and the ledger entries that brought the tires in. Ids are fixed
// so reruns are no-ops.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	today := time.Now().Format("2006-01-02")

	for i := 1; i <= 5; i++ {
		tireID := fmt.Sprintf("seed-tire-%d", i)
		serial := fmt.Sprintf("SN-SEED-%04d", i)
		size := domain.SizeOptions[(i-1)%len(domain.SizeOptions)]
		condition := domain.ConditionOptions[(i-1)%len(domain.ConditionOptions)]

		_, err = tx.Exec(ctx, `
			INSERT INTO tires (id, serial_number, brand, size, condition, status, location, date_in, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, tireID, serial, "Bridgestone", size, condition, domain.StatusAvailable, domain.DefaultLocation, today, "Seed")
		if err != nil {
			log.Fatalf("insert tire: %v", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (id, type, serial_number, brand, size, condition, date, actor)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, fmt.Sprintf("seed-entry-%d", i), domain.EntryTypeIn, serial, "Bridgestone", size, condition, today, "Seed")
		if err != nil {
			log.Fatalf("insert transaction: %v", err)
		}
	}

	for i, group := range domain.VehicleGroups {
		_, err = tx.Exec(ctx, `
			INSERT INTO vehicles (id, plate_number, vehicle_type, department, driver, status, tire_history)
			VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb)
			ON CONFLICT (id) DO NOTHING
		`, fmt.Sprintf("seed-vehicle-%d", i+1),
			fmt.Sprintf("B 90%02d XY", i+1),
			domain.VehicleTypes[i%len(domain.VehicleTypes)],
			group, domain.DefaultDriver, domain.VehicleActive)
		if err != nil {
			log.Fatalf("insert vehicle: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	log.Println("seed complete")
}
