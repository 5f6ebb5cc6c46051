package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/sketchbook/internal/config"
)

// usage: migrations <name> [up|down]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("a migration name is required.")
	}
	migrationName := os.Args[1]
	direction := "up"
	if len(os.Args) > 2 {
		direction = os.Args[2]
	}
	if direction != "up" && direction != "down" {
		log.Fatalf("unknown direction %q", direction)
	}

	pg, err := config.LoadPostgres()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, pg.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	basePath := filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")
	fileContent, err := migrationFileContent(basePath, migrationName, direction)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := db.ExecContext(ctx, string(fileContent)); err != nil {
		log.Fatalf("Failed to execute SQL file: %v", err)
	}

	fmt.Println("Migration file executed successfully.")
}

func migrationFileContent(basePath, migrationName, direction string) ([]byte, error) {
	fileName, err := migrationFileName(basePath, migrationName, direction)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(basePath, fileName))
}

func migrationFileName(basePath, migrationName, direction string) (string, error) {
	pattern, err := regexp.Compile(fmt.Sprintf(`^.*%s\.%s\.sql$`, regexp.QuoteMeta(migrationName), direction))
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if pattern.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}
	return "", fmt.Errorf("migration %s (%s) not found", migrationName, direction)
}
