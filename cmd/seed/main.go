// Command seed populates a development database with demo users, help
// requests, and chat threads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"puntovuela/internal/catalog"
	"puntovuela/internal/config"
	"puntovuela/internal/database"
	"puntovuela/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "number of users to create")
	flag.IntVar(&opts.NumRequests, "requests", opts.NumRequests, "number of help requests to create")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "delete existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Env == "production" {
		return fmt.Errorf("refusing to seed a production database")
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	return seed.NewSeeder(db, cat).Run(context.Background(), opts)
}
