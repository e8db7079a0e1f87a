// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package sqlcatalog reads the course catalog from a SQL table through
// database/sql. DuckDB ("duckdb") and SQLite ("sqlite") drivers are
// registered by this package.
//
// The table must provide the columns
//
//	id, title, author, category, description, link,
//	university, difficulty, prerequisites, price, duration_weeks,
//	enrollment_deadline, start_date, end_date, exam_date
//
// Optional columns may hold NULL.
package sqlcatalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/tomtom215/coursematch/internal/catalog"
)

const selectColumns = `id, title, author, category, description, link,
	university, difficulty, prerequisites, price, duration_weeks,
	enrollment_deadline, start_date, end_date, exam_date`

// Source reads catalog records from a table.
type Source struct {
	driver string
	dsn    string
	table  string
}

// New returns a Source for driver ("duckdb" or "sqlite"), dsn and table.
// The table name is interpolated into SQL and must be a plain identifier;
// config validation enforces that.
func New(driver, dsn, table string) *Source {
	return &Source{driver: driver, dsn: dsn, table: table}
}

func (s *Source) String() string {
	return fmt.Sprintf("%s:%s/%s", s.driver, s.dsn, s.table)
}

// Records implements catalog.Source. The database is opened per call and
// closed before returning; the catalog is read once at startup.
func (s *Source) Records(ctx context.Context) ([]catalog.Record, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, &catalog.LoadError{Source: s.String(), Reason: "cannot open database", Err: err}
	}
	defer db.Close()

	//nolint:gosec // table is validated as a plain identifier
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", selectColumns, s.table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &catalog.LoadError{Source: s.String(), Reason: "query failed", Err: err}
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &catalog.LoadError{Source: s.String(), Reason: "malformed row", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &catalog.LoadError{Source: s.String(), Reason: "row iteration failed", Err: err}
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (catalog.Record, error) {
	var (
		id                                               sql.NullInt64
		title, author, category, description, link       sql.NullString
		university, difficulty, prerequisites            sql.NullString
		price                                            sql.NullFloat64
		durationWeeks                                    sql.NullInt64
		enrollmentDeadline, startDate, endDate, examDate sql.NullString
	)
	if err := rows.Scan(
		&id, &title, &author, &category, &description, &link,
		&university, &difficulty, &prerequisites, &price, &durationWeeks,
		&enrollmentDeadline, &startDate, &endDate, &examDate,
	); err != nil {
		return catalog.Record{}, err
	}

	rec := catalog.Record{
		Title:              str(title),
		Author:             str(author),
		Category:           str(category),
		Description:        str(description),
		Link:               str(link),
		University:         str(university),
		Difficulty:         str(difficulty),
		Prerequisites:      str(prerequisites),
		EnrollmentDeadline: str(enrollmentDeadline),
		StartDate:          str(startDate),
		EndDate:            str(endDate),
		ExamDate:           str(examDate),
	}
	if id.Valid {
		v := int(id.Int64)
		rec.ID = &v
	}
	if price.Valid {
		v := price.Float64
		rec.Price = &v
	}
	if durationWeeks.Valid {
		v := int(durationWeeks.Int64)
		rec.DurationWeeks = &v
	}
	return rec, nil
}

func str(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
