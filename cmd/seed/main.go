// Package main loads the reference workbook (tanks, densities, silos) into storage.
//
// Usage:
//
//	seed [-file reference.xlsx] [-only tanks,densities,silos]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"millstock/internal/app"
	"millstock/internal/config"
	"millstock/internal/domain/reference"
	"millstock/internal/infrastructure/excel"
	"millstock/pkg/logger"
)

func main() {
	file := flag.String("file", "", "reference workbook (defaults to REFERENCE_WORKBOOK)")
	only := flag.String("only", "tanks,densities,silos", "comma-separated tables to replace")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	path := *file
	if path == "" {
		path = cfg.Reference.Workbook
	}
	if path == "" {
		log.Fatal("reference workbook is required: pass -file or set REFERENCE_WORKBOOK")
	}

	ctx := logger.WithLogger(context.Background(), log)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer rt.Close()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalw("failed to open workbook", "path", path, "error", err)
	}
	defer f.Close()

	tables, err := excel.LoadReference(f)
	if err != nil {
		log.Fatalw("failed to read workbook", "path", path, "error", err)
	}

	if err := seed(ctx, rt.Services.Reference, tables, strings.Split(*only, ",")); err != nil {
		log.Fatalw("failed to seed reference tables", "error", err)
	}

	log.Infow("seeding completed successfully",
		"tanks", len(tables.Tanks),
		"densities", len(tables.Densities),
		"silos", len(tables.Silos),
	)
}

// ReferenceWriter replaces reference tables.
type ReferenceWriter interface {
	ReplaceTanks(ctx context.Context, tanks []reference.Tank) error
	ReplaceDensities(ctx context.Context, densities []reference.Density) error
	ReplaceSilos(ctx context.Context, silos []reference.Silo) error
}

func seed(ctx context.Context, w ReferenceWriter, tables reference.Tables, only []string) error {
	for _, name := range only {
		var err error
		switch strings.TrimSpace(name) {
		case "tanks":
			err = w.ReplaceTanks(ctx, tables.Tanks)
		case "densities":
			err = w.ReplaceDensities(ctx, tables.Densities)
		case "silos":
			err = w.ReplaceSilos(ctx, tables.Silos)
		case "":
			continue
		default:
			return fmt.Errorf("unknown table %q", name)
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}
