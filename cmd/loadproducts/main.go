// Command loadproducts imports product JSON files into the catalog:
//
//	loadproducts fixtures/products.json [more.json ...]
//
// Existing products (matched by id) are updated; failures are counted per
// row and never abort the run.
package main

import (
	"context"
	"fmt"
	"os"

	catalogstore "giftlist/internal/catalog/store"
	"giftlist/internal/loader"
	"giftlist/internal/platform/config"
	"giftlist/internal/platform/database"
	"giftlist/internal/platform/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: loadproducts <file.json> [file.json ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	l := loader.New(catalogstore.NewPostgres(db.DB), log)
	result, err := l.Load(context.Background(), os.Args[1:]...)
	if err != nil {
		log.Error("load aborted", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Total products: %d\n", result.Succeeded+result.Failed)
	if result.Failed > 0 {
		fmt.Fprintf(os.Stderr, "Failed: %d\n", result.Failed)
		fmt.Printf("Succeeded: %d\n", result.Succeeded)
		os.Exit(1)
	}
}
