package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// Retention sweep for playground data. Sessions past expiry and generations
// past the retention window are removed together with their stored images.
//
// Run from cron, e.g. hourly:
//
//	cleanup -retention-hours 24

var (
	dsn            = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	retentionHours = flag.Int("retention-hours", envRetentionHours(), "Delete playground data older than this many hours (min 1)")
	dryRun         = flag.Bool("dry-run", false, "Report what would be deleted; no DB writes, no file removal")
	mediaRoot      = flag.String("media-root", envOr("MEDIA_ROOT", "./media"), "Media directory holding stored images")
)

func envRetentionHours() int {
	raw := os.Getenv("PLAYGROUND_DATA_RETENTION_HOURS")
	if raw == "" {
		return 24
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return 24
	}
	return parsed
}

func envOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if *retentionHours < 1 {
		fatalf("--retention-hours must be at least 1")
	}

	database, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	cutoff := time.Now().Add(-time.Duration(*retentionHours) * time.Hour)
	fmt.Printf("Retention cutoff: %s (%d hours)\n", cutoff.Format(time.RFC3339), *retentionHours)

	// Collect image paths before deleting rows; the file sweep runs after the
	// DB transaction commits.
	paths, err := collectFilePaths(database, cutoff)
	if err != nil {
		fatalf("Failed to collect file paths: %v", err)
	}

	tx, err := database.Begin()
	if err != nil {
		fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	generations, err := execCount(tx, `
		DELETE FROM app_playground.generations g
		USING app_playground.sessions s
		WHERE g.session_id = s.id AND (s.expires_at < $1 OR g.created_at < $1)`, cutoff)
	if err != nil {
		fatalf("Failed to delete generations: %v", err)
	}

	events, err := execCount(tx, `
		DELETE FROM app_playground.rate_limit_events
		WHERE created_at < $1`, cutoff)
	if err != nil {
		fatalf("Failed to delete rate limit events: %v", err)
	}

	sessions, err := execCount(tx, `
		DELETE FROM app_playground.sessions s
		WHERE s.expires_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM app_playground.generations g WHERE g.session_id = s.id
		  )`, cutoff)
	if err != nil {
		fatalf("Failed to delete sessions: %v", err)
	}

	if *dryRun {
		fmt.Printf("Dry run: would delete %d generations, %d rate events, %d sessions, %d files\n",
			generations, events, sessions, len(paths))
		return
	}

	if err := tx.Commit(); err != nil {
		fatalf("Failed to commit: %v", err)
	}

	removed := 0
	for _, rel := range paths {
		if rel == "" {
			continue
		}
		err := os.Remove(filepath.Join(*mediaRoot, filepath.FromSlash(rel)))
		if err == nil {
			removed++
		} else if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Failed to remove %s: %v\n", rel, err)
		}
	}

	fmt.Printf("Deleted %d generations, %d rate events, %d sessions, %d files\n",
		generations, events, sessions, removed)
}

// collectFilePaths gathers every stored image owned by rows the sweep will
// delete: selfies of expired sessions plus custom styles and results of
// expiring generations.
func collectFilePaths(database *sql.DB, cutoff time.Time) ([]string, error) {
	rows, err := database.Query(`
		SELECT s.selfie_path, '', ''
		FROM app_playground.sessions s
		WHERE s.expires_at < $1
		UNION ALL
		SELECT g.selfie_path, g.custom_style_path, g.result_path
		FROM app_playground.generations g
		JOIN app_playground.sessions s ON s.id = g.session_id
		WHERE s.expires_at < $1 OR g.created_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	var paths []string
	for rows.Next() {
		var a, b, c sql.NullString
		if err := rows.Scan(&a, &b, &c); err != nil {
			return nil, err
		}
		for _, value := range []sql.NullString{a, b, c} {
			if value.Valid && value.String != "" {
				if _, dup := seen[value.String]; !dup {
					seen[value.String] = struct{}{}
					paths = append(paths, value.String)
				}
			}
		}
	}
	return paths, rows.Err()
}

func execCount(tx *sql.Tx, query string, args ...interface{}) (int64, error) {
	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
