package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/comanda-pos/terminal/internal/config"
	"github.com/comanda-pos/terminal/internal/enum"
	"github.com/comanda-pos/terminal/internal/model"
	"github.com/comanda-pos/terminal/internal/store"
)

func main() {
	// CLI flags
	username := flag.String("username", "", "Admin username")
	pin := flag.String("pin", "", "Admin PIN")
	name := flag.String("name", "", "Admin display name")
	withMenu := flag.Bool("menu", true, "Seed the demo menu into the product cache")
	flag.Parse()

	// Fall back to environment variables
	if *username == "" {
		*username = os.Getenv("SEED_USERNAME")
	}
	if *pin == "" {
		*pin = os.Getenv("SEED_PIN")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	// Fall back to defaults
	if *username == "" {
		*username = "admin"
	}
	if *pin == "" {
		*pin = "1234"
		log.Println("WARNING: Using default PIN '1234'. Change immediately in production!")
	}
	if *name == "" {
		*name = "Administrator"
	}

	cfg := config.Load()

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Unable to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	operatorID, err := seedAdmin(ctx, st, *username, *pin, *name)
	if err != nil {
		log.Fatalf("Failed to seed admin operator: %v", err)
	}

	if *withMenu {
		if err := seedMenu(ctx, st); err != nil {
			log.Fatalf("Failed to seed menu: %v", err)
		}
	}

	log.Println("Seed completed successfully")
	log.Printf("Admin operator ID: %s", operatorID)
}

// seedAdmin creates the initial admin operator if no operators exist.
func seedAdmin(ctx context.Context, st *store.Store, username, pin, name string) (uuid.UUID, error) {
	count, err := st.CountOperators(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if count > 0 {
		existing, err := st.GetOperatorByUsername(ctx, username)
		if err == nil {
			log.Printf("Operator '%s' already exists (ID: %s), skipping", username, existing.ID)
			return existing.ID, nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, err
	}

	op := &model.Operator{
		ID:        uuid.New(),
		Name:      name,
		Username:  username,
		PinHash:   string(hash),
		Role:      enum.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := st.CreateOperator(ctx, op); err != nil {
		return uuid.Nil, err
	}
	return op.ID, nil
}

// seedMenu loads a demo catalog so the terminal renders a menu before the
// first gateway refresh. Skipped when the cache already has products.
func seedMenu(ctx context.Context, st *store.Store) error {
	existing, err := st.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("Product cache already has %d products, skipping menu seed", len(existing))
		return nil
	}

	products := []model.Product{
		{ID: "demo-burger", Name: "House Burger", Description: "Smash patty, cheddar, pickles", Price: decimal.RequireFromString("12.50"), Category: "mains", Available: true, PreparationMinutes: 12},
		{ID: "demo-margherita", Name: "Pizza Margherita", Description: "Tomato, mozzarella, basil", Price: decimal.RequireFromString("14.00"), Category: "mains", Available: true, PreparationMinutes: 15},
		{ID: "demo-caesar", Name: "Caesar Salad", Description: "Romaine, parmesan, croutons", Price: decimal.RequireFromString("9.75"), Category: "starters", Available: true, PreparationMinutes: 8},
		{ID: "demo-fries", Name: "Fries", Description: "Sea salt, rosemary", Price: decimal.RequireFromString("4.50"), Category: "sides", Available: true, PreparationMinutes: 6},
		{ID: "demo-lemonade", Name: "Fresh Lemonade", Description: "", Price: decimal.RequireFromString("3.80"), Category: "drinks", Available: true, PreparationMinutes: 2},
		{ID: "demo-espresso", Name: "Espresso", Description: "", Price: decimal.RequireFromString("2.50"), Category: "drinks", Available: true, PreparationMinutes: 3},
		{ID: "demo-brownie", Name: "Chocolate Brownie", Description: "Warm, vanilla ice cream", Price: decimal.RequireFromString("6.25"), Category: "desserts", Available: true, PreparationMinutes: 5},
	}

	if err := st.ReplaceProducts(ctx, products, time.Now()); err != nil {
		return err
	}
	log.Printf("Seeded %d demo products", len(products))
	return nil
}
