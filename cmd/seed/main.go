// Package main provides a tool to seed the database with sample annotation data.
//
// It creates a handful of tags with styles and a spread of annotations over
// token ids, useful for exercising search and snapshot exchange locally.
//
// Usage:
//
//	DATA_DIR=~/Margin/data go run ./cmd/seed
//	DATA_DIR=~/Margin/data go run ./cmd/seed -annotations 200
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/service"
	"github.com/marginapp/margin-server/internal/store"
)

var annotationCount = flag.Int("annotations", 50, "Number of annotations to create")

var sampleTags = []service.CreateTagRequest{
	{Name: "covenant", Category: "theme", Color: "#b45309", Description: "Promises between parties"},
	{Name: "creation", Category: "theme", Color: "#15803d"},
	{Name: "divine-name", Category: "term", Color: "#1d4ed8", Description: "Occurrences of the divine name"},
	{Name: "wordplay", Category: "literary", Color: "#7c3aed"},
	{Name: "question", Category: "personal", Color: "#be123c", Description: "Passages to revisit"},
}

var sampleNotes = []string{
	"Echoes the opening formula.",
	"Compare the parallel account.",
	"The verb is repeated three times in this section.",
	"First occurrence of this phrase.",
	"",
}

func main() {
	flag.Parse()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = os.ExpandEnv("$HOME/Margin/data")
	}

	fmt.Printf("Opening database at: %s\n", dataDir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	database, err := db.Open(filepath.Join(dataDir, "margin.db"), logger, db.Options{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	st := store.New(database, logger)
	tagService := service.NewTagService(st, nil, logger)
	annotationService := service.NewAnnotationService(st, nil, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	tagIDs := make([]string, 0, len(sampleTags))
	for _, req := range sampleTags {
		tag, err := tagService.CreateTag(ctx, req)
		if err != nil {
			// Re-running the seeder against an existing database hits
			// duplicate names; reuse the existing tag.
			existing, lookupErr := tagService.GetTagByName(ctx, req.Name)
			if lookupErr != nil {
				log.Fatalf("Failed to create tag %q: %v", req.Name, err)
			}
			tag = existing
		}
		tagIDs = append(tagIDs, tag.ID)
		fmt.Printf("Tag %s (%s)\n", tag.Name, tag.ID)
	}

	created := 0
	for i := 0; i < *annotationCount; i++ {
		book := []string{"gen", "exod", "ps", "isa", "1-ne"}[rng.Intn(5)]
		chapter := rng.Intn(20) + 1
		verse := rng.Intn(30) + 1
		start := rng.Intn(15) + 1
		span := rng.Intn(4) + 1

		tokens := make([]string, 0, span)
		for w := 0; w < span; w++ {
			tokens = append(tokens, fmt.Sprintf("%s.%d.%d.%d", book, chapter, verse, start+w))
		}

		_, err := annotationService.CreateAnnotation(ctx, service.CreateAnnotationRequest{
			TagID:    tagIDs[rng.Intn(len(tagIDs))],
			TokenIDs: tokens,
			Note:     sampleNotes[rng.Intn(len(sampleNotes))],
		})
		if err != nil {
			log.Fatalf("Failed to create annotation: %v", err)
		}
		created++
	}

	fmt.Printf("\nSeeded %d annotations across %d tags\n", created, len(tagIDs))
}
