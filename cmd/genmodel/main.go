// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Command genmodel inspects a table in the SQLite database and emits a
// Go source file with its store.Table descriptor and a typed row struct.
// The generated fillable list leaves out the primary key and the
// created_at/updated_at audit columns, so the descriptor is safe to use
// with form-driven writes as generated.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"

	"github.com/avolkau/minipress/internal/store"
)

func main() {
	dbPath := flag.String("db", "./data/minipress.db", "Path to the SQLite database")
	table := flag.String("table", "", "Table to generate a model for (required)")
	out := flag.String("out", ".", "Output directory for the generated file")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s -table <name> [-db path] [-out dir]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *table == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*dbPath, *table, *out); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "genmodel: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, table, outDir string) error {
	db, err := store.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	src, err := generate(context.Background(), db, table)
	if err != nil {
		return err
	}

	outPath := filepath.Join(outDir, table+"_model.go")
	if err := os.WriteFile(outPath, src, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Println(outPath)
	return nil
}

// column is one row of PRAGMA table_info output.
type column struct {
	Name    string
	Type    string
	NotNull bool
	IsPK    bool
}

// generate produces a formatted Go source file for the named table.
func generate(ctx context.Context, db *sql.DB, table string) ([]byte, error) {
	cols, err := introspect(ctx, db, table)
	if err != nil {
		return nil, err
	}

	pk := "id"
	for _, c := range cols {
		if c.IsPK {
			pk = c.Name
			break
		}
	}

	var fillable []string
	for _, c := range cols {
		if c.IsPK || c.Name == "created_at" || c.Name == "updated_at" {
			continue
		}
		fillable = append(fillable, c.Name)
	}

	typeName := exportedName(singular(table))

	var b strings.Builder
	b.WriteString("// Copyright (c) 2025-2026 Andrei Volkau\n")
	b.WriteString("// SPDX-License-Identifier: GPL-3.0-or-later\n\n")
	b.WriteString("// Code generated by genmodel. DO NOT EDIT.\n\n")
	b.WriteString("package store\n\n")

	imports := neededImports(cols)
	if len(imports) > 0 {
		b.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(&b, "\t%q\n", imp)
		}
		b.WriteString(")\n\n")
	}

	fmt.Fprintf(&b, "// %sTable describes the %s table for the generic CRUD operations.\n", typeName, table)
	fmt.Fprintf(&b, "var %sTable = Table{\n", typeName)
	fmt.Fprintf(&b, "\tName:       %q,\n", table)
	fmt.Fprintf(&b, "\tPrimaryKey: %q,\n", pk)
	b.WriteString("\tFillable: []string{\n")
	for _, c := range fillable {
		fmt.Fprintf(&b, "\t\t%q,\n", c)
	}
	b.WriteString("\t},\n}\n\n")

	fmt.Fprintf(&b, "// %sRow is a typed row of the %s table.\n", typeName, table)
	fmt.Fprintf(&b, "type %sRow struct {\n", typeName)
	for _, c := range cols {
		fmt.Fprintf(&b, "\t%s %s\n", exportedName(c.Name), goType(c))
	}
	b.WriteString("}\n")

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return src, nil
}

// introspect returns the column layout of a table, in declaration order.
func introspect(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up table %q: %w", table, err)
	}

	// Table name verified against the catalog above; PRAGMA does not
	// take bind parameters.
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("reading table info for %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []column
	for rows.Next() {
		var (
			cid     int
			c       column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table info: %w", err)
		}
		c.NotNull = notNull != 0
		c.IsPK = pk > 0
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q has no columns", table)
	}
	return cols, nil
}

// goType maps a SQLite column type to a Go field type. Nullable columns
// get the matching sql.Null wrapper.
func goType(c column) string {
	t := strings.ToUpper(c.Type)
	nullable := !c.NotNull && !c.IsPK

	switch {
	case strings.Contains(t, "BOOL") || strings.HasPrefix(c.Name, "is_") || strings.HasPrefix(c.Name, "has_"):
		if nullable {
			return "sql.NullBool"
		}
		return "bool"
	case strings.Contains(t, "DATE") || strings.Contains(t, "TIME"):
		if nullable {
			return "sql.NullTime"
		}
		return "time.Time"
	case strings.Contains(t, "INT"):
		if nullable {
			return "sql.NullInt64"
		}
		return "int64"
	case strings.Contains(t, "REAL") || strings.Contains(t, "FLOA") || strings.Contains(t, "DOUB") || strings.Contains(t, "NUMERIC"):
		if nullable {
			return "sql.NullFloat64"
		}
		return "float64"
	case strings.Contains(t, "BLOB"):
		return "[]byte"
	default:
		if nullable {
			return "sql.NullString"
		}
		return "string"
	}
}

// neededImports returns the import paths the generated row struct uses.
func neededImports(cols []column) []string {
	needSQL := false
	needTime := false
	for _, c := range cols {
		switch goType(c) {
		case "sql.NullBool", "sql.NullTime", "sql.NullInt64", "sql.NullFloat64", "sql.NullString":
			needSQL = true
		}
		if goType(c) == "time.Time" {
			needTime = true
		}
	}

	var imports []string
	if needSQL {
		imports = append(imports, "database/sql")
	}
	if needTime {
		imports = append(imports, "time")
	}
	return imports
}

// singular strips a trailing plural s. Good enough for this schema.
func singular(name string) string {
	if strings.HasSuffix(name, "ses") {
		return strings.TrimSuffix(name, "es")
	}
	return strings.TrimSuffix(name, "s")
}

// exportedName converts a snake_case identifier to CamelCase.
func exportedName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if p == "id" {
			parts[i] = "ID"
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
