package main

import (
	"context"
	"log"
	"os"

	"levelup-cart/internal/config"
	"levelup-cart/internal/db"
	cartrepo "levelup-cart/internal/repository/cart"
	"levelup-cart/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, cartrepo.NewPostgres(pool)); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
