// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (09120000000) already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"dastyar-dashboard/internal/config"
	"dastyar-dashboard/internal/db"
	fundsdomain "dastyar-dashboard/internal/funds/domain"
	fundsrepo "dastyar-dashboard/internal/funds/repository"
	"dastyar-dashboard/internal/security"
	userdomain "dastyar-dashboard/internal/user/domain"
	userrepo "dastyar-dashboard/internal/user/repository"
)

const (
	devPhone    = "09120000000"
	devPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByPhone(ctx, devPhone)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", devPhone)
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	devUser := &userdomain.User{
		ID:           uuid.New().String(),
		PhoneNumber:  devPhone,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, devUser); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	accounts := fundsrepo.NewPostgresRepository(conn)
	seedAccounts := []fundsdomain.Account{
		{AccountingName: "بانک ملت", Kind: fundsdomain.KindBank, Balance: 600000000, SortOrder: 1},
		{AccountingName: "بانک سامان", Kind: fundsdomain.KindBank, Balance: 150000000, SortOrder: 2},
		{AccountingName: "صندوق درآمد ثابت کمند", Kind: fundsdomain.KindFund, Balance: 180000000, SortOrder: 3},
		{AccountingName: "صندوق طلا لوتوس", Kind: fundsdomain.KindFund, Balance: 70000000, SortOrder: 4},
	}
	for i := range seedAccounts {
		a := seedAccounts[i]
		a.CreatedAt = now
		if err := accounts.Create(ctx, &a); err != nil {
			log.Fatalf("create account %q: %v", a.AccountingName, err)
		}
	}

	log.Printf("Seed applied: dev user %s (password %q) and %d accounts.", devPhone, devPassword, len(seedAccounts))
}
