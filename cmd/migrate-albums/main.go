// migrate-albums copies album documents between the sqlite and JSON file
// backends, normalizing each document on the way.
//
// Usage: go run main.go -db=<path> -dir=<albums dir> -to=sqlite|file [-dry-run] [-execute]
//
// The tool:
// 1. Lists every album key in the source backend
// 2. Decodes each document; corrupted documents are reported and skipped
// 3. Re-encodes it in the {collection, sets} format
// 4. Writes it to the target backend (with -execute), replacing what is there
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/database"
)

// source and target backends both list keys and move raw documents
type backend interface {
	album.Persistence
	Keys(ctx context.Context) ([]string, error)
}

// MigrationResult tracks the outcome of each album
type MigrationResult struct {
	Key    string
	Cards  int
	Sets   int
	Action string // "migrated", "would_migrate", "corrupted", "error"
	Reason string
}

func main() {
	dbPath := flag.String("db", "", "Path to SQLite database (required)")
	albumDir := flag.String("dir", "", "Path to the JSON album directory (required)")
	to := flag.String("to", "sqlite", "Target backend: sqlite or file")
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing")
	execute := flag.Bool("execute", false, "Execute the migration (required to make changes)")
	flag.Parse()

	if *dbPath == "" || *albumDir == "" || (*to != "sqlite" && *to != "file") {
		fmt.Println("Usage: migrate-albums -db=<path> -dir=<dir> -to=sqlite|file [options]")
		fmt.Println("")
		fmt.Println("Copies album documents between the sqlite and JSON file backends.")
		fmt.Println("")
		fmt.Println("Options:")
		fmt.Println("  -db       Path to SQLite database (required)")
		fmt.Println("  -dir      Path to the JSON album directory (required)")
		fmt.Println("  -to       Target backend, sqlite (default) or file")
		fmt.Println("  -dry-run  Preview changes without writing")
		fmt.Println("  -execute  Execute the migration (required to make changes)")
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Println("  # Preview moving file albums into the database")
		fmt.Println("  migrate-albums -db=./pokido.db -dir=./data/albums -dry-run")
		os.Exit(1)
	}

	if !*dryRun && !*execute {
		fmt.Println("Error: Must specify either -dry-run or -execute")
		os.Exit(1)
	}

	if err := database.Initialize(*dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var src, dst backend
	sqliteBackend := album.NewGormPersistence(database.GetDB())
	fileBackend := album.NewFilePersistence(*albumDir)
	if *to == "sqlite" {
		src, dst = fileBackend, sqliteBackend
	} else {
		src, dst = sqliteBackend, fileBackend
	}

	ctx := context.Background()
	results, err := migrate(ctx, src, dst, *execute && !*dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	printSummary(results, *dryRun || !*execute)
}

// migrate copies every document from src to dst. When write is false nothing
// is saved.
func migrate(ctx context.Context, src, dst backend, write bool) ([]MigrationResult, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d albums to migrate", len(keys))

	results := make([]MigrationResult, 0, len(keys))
	for i, key := range keys {
		fmt.Printf("[%d/%d] %s\n", i+1, len(keys), key)
		result := MigrationResult{Key: key}

		data, err := src.Load(ctx, key)
		if err != nil {
			result.Action, result.Reason = "error", err.Error()
			results = append(results, result)
			continue
		}

		state, err := album.Unmarshal(data)
		if err != nil {
			result.Action, result.Reason = "corrupted", err.Error()
			fmt.Printf("  ❌ %v\n", err)
			results = append(results, result)
			continue
		}

		totals := album.TotalStats(state)
		result.Cards, result.Sets = totals.TotalCards, totals.TotalSets

		if !write {
			result.Action = "would_migrate"
			results = append(results, result)
			continue
		}

		normalized, err := album.Marshal(state)
		if err == nil {
			err = dst.Save(ctx, key, normalized)
		}
		if err != nil {
			result.Action, result.Reason = "error", err.Error()
			fmt.Printf("  ⚠ Migration failed: %v\n", err)
		} else {
			result.Action = "migrated"
			fmt.Printf("  ✓ %d cards in %d sets\n", result.Cards, result.Sets)
		}
		results = append(results, result)
	}
	return results, nil
}

func printSummary(results []MigrationResult, dryRun bool) {
	counts := map[string]int{}
	for _, r := range results {
		counts[r.Action]++
	}

	fmt.Println("\n========== SUMMARY ==========")
	if dryRun {
		fmt.Println("(DRY RUN - no changes made)")
	}
	fmt.Printf("Migrated:      %d\n", counts["migrated"])
	fmt.Printf("Would migrate: %d\n", counts["would_migrate"])
	fmt.Printf("Corrupted:     %d\n", counts["corrupted"])
	fmt.Printf("Errors:        %d\n", counts["error"])

	for _, r := range results {
		if r.Action == "corrupted" || r.Action == "error" {
			fmt.Printf("  - %s: %s\n", r.Key, r.Reason)
		}
	}
}
