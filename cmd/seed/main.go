// Seeds the school catalog from CSV files, for environments without
// Data.gov.sg access (CI, local dev with CATALOG_OFFLINE=1).
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

// CLI flags
var (
	csvPath     = flag.String("csv", "", "Path to the schools CSV (required)")
	cutoffsPath = flag.String("cutoffs", "", "Optional path to a cutoffs CSV (school_name,group_key,value)")
	dsn         = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun      = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm     = flag.Bool("confirm", false, "Required to perform destructive replace")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key. 0 = disabled")
)

// CSV contract
// school_name,address,postal_code,mainlevel_code,zone_code,type_code,latitude,longitude,subjects,ccas
// subjects and ccas are semicolon-separated without surrounding spaces

type SchoolCSV struct {
	Name       string
	Address    string
	PostalCode string
	Level      string
	Zone       string
	Type       string
	Latitude   *float64
	Longitude  *float64
	Subjects   []string
	CCAs       []string
}

type CutoffCSV struct {
	Name     string
	GroupKey string
	Value    string
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *csvPath == "" {
		fatalf("--csv is required")
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	rows, err := loadSchools(*csvPath)
	if err != nil {
		fatalf("CSV error: %v", err)
	}
	if err := validateSchools(rows); err != nil {
		fatalf("CSV validation failed: %v", err)
	}
	fmt.Printf("Loaded %d schools from %s\n", len(rows), *csvPath)

	var cutoffs []CutoffCSV
	if *cutoffsPath != "" {
		cutoffs, err = loadCutoffs(*cutoffsPath)
		if err != nil {
			fatalf("Cutoffs CSV error: %v", err)
		}
		fmt.Printf("Loaded %d cutoff rows from %s\n", len(cutoffs), *cutoffsPath)
	}

	if *dryRun {
		for _, s := range rows[:min(len(rows), 5)] {
			fmt.Printf("  %s | %s | %s | %s\n", s.Name, s.Level, s.Zone, s.PostalCode)
		}
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	// Optional advisory lock to avoid concurrent runs
	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}

	var before int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog.schools`).Scan(&before); err != nil {
		fatalf("pre-count: %v", err)
	}
	fmt.Printf("Before: schools=%d\n", before)

	// Destructive replace, cutoffs first (no ON DELETE CASCADE assumed)
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog.cutoff_points`); err != nil {
		fatalf("wipe cutoffs: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog.schools`); err != nil {
		fatalf("wipe schools: %v", err)
	}

	for _, s := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO catalog.schools
				(school_name, address, postal_code, mainlevel_code, zone_code, type_code,
				 latitude, longitude, subjects, ccas, last_synced)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())`,
			s.Name, s.Address, s.PostalCode, s.Level, s.Zone, s.Type,
			s.Latitude, s.Longitude, pq.StringArray(s.Subjects), pq.StringArray(s.CCAs))
		if err != nil {
			fatalf("insert school %q: %v", s.Name, err)
		}
	}
	for _, c := range cutoffs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO catalog.cutoff_points (school_name, group_key, value)
			VALUES ($1,$2,$3)
			ON CONFLICT (school_name, group_key) DO UPDATE SET value = EXCLUDED.value`,
			c.Name, c.GroupKey, c.Value)
		if err != nil {
			fatalf("insert cutoff %q/%q: %v", c.Name, c.GroupKey, err)
		}
	}

	// Stamp the catalog fresh so the server doesn't immediately refetch
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog.stamps (name, last_fetched) VALUES ('schools', NOW())
		ON CONFLICT (name) DO UPDATE SET last_fetched = NOW()`); err != nil {
		fatalf("stamp: %v", err)
	}

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}

	fmt.Printf("Seeded %d schools and %d cutoff rows.\n", len(rows), len(cutoffs))
}

func loadSchools(path string) ([]SchoolCSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = 10

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.ToLower(header[0]) != "school_name" {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}

	var out []SchoolCSV
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, SchoolCSV{
			Name:       strings.TrimSpace(rec[0]),
			Address:    strings.TrimSpace(rec[1]),
			PostalCode: strings.TrimSpace(rec[2]),
			Level:      strings.ToUpper(strings.TrimSpace(rec[3])),
			Zone:       strings.ToUpper(strings.TrimSpace(rec[4])),
			Type:       strings.ToUpper(strings.TrimSpace(rec[5])),
			Latitude:   parseFloat(rec[6]),
			Longitude:  parseFloat(rec[7]),
			Subjects:   splitList(rec[8]),
			CCAs:       splitList(rec[9]),
		})
	}
	return out, nil
}

func loadCutoffs(path string) ([]CutoffCSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = 3

	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []CutoffCSV
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, CutoffCSV{
			Name:     strings.TrimSpace(rec[0]),
			GroupKey: strings.TrimSpace(rec[1]),
			Value:    strings.TrimSpace(rec[2]),
		})
	}
	return out, nil
}

func validateSchools(rows []SchoolCSV) error {
	seen := make(map[string]struct{}, len(rows))
	for i, s := range rows {
		if s.Name == "" {
			return fmt.Errorf("row %d: empty school_name", i+2)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("row %d: duplicate school_name %q", i+2, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
