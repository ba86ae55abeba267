// Package main provides a small inspection tool for a Margin database file.
//
// Usage:
//
//	DATA_DIR=~/Margin/data go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/store"
)

func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = os.ExpandEnv("$HOME/Margin/data")
	}
	dbPath := filepath.Join(dataDir, "margin.db")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	database, err := db.Open(dbPath, logger, db.Options{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s\n\n", dbPath)

	for _, table := range []string{"tags", "annotations", "tag_styles"} {
		rows, err := database.Query(ctx, "SELECT COUNT(*) AS n FROM "+table)
		if err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		fmt.Printf("%-12s %v\n", table, rows[0]["n"])
	}

	st := store.New(database, logger)

	tags, err := st.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	if len(tags) > 0 {
		fmt.Println("\nPer-tag annotation counts:")
		for _, tag := range tags {
			annotations, err := st.GetAnnotationsForTag(ctx, tag.ID)
			if err != nil {
				log.Fatalf("Failed to load annotations for %s: %v", tag.ID, err)
			}
			fmt.Printf("  %-24s %d\n", tag.Name, len(annotations))
		}
	}

	recent, err := st.ListAnnotations(ctx)
	if err != nil {
		log.Fatalf("Failed to list annotations: %v", err)
	}
	if len(recent) > 0 {
		fmt.Println("\nMost recent annotations:")
		for i, a := range recent {
			if i == 5 {
				break
			}
			fmt.Printf("  %s  v%d  %d tokens  %s\n", a.ID, a.Version, len(a.TokenIDs), a.LastModified.Format("2006-01-02 15:04"))
		}
	}
}
