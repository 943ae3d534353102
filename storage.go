package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type Storage struct {
	OrgName   string
	AuthToken string
}

// RunRecord is everything persisted about a single run.
type RunRecord struct {
	Id       string
	Time     time.Time
	Config   Config
	Host     SysInfo
	Summary  Summary
	Services []time.Duration
}

type Measurement struct {
	Name      string
	Iteration int
	Value     int64
}

// DbUrl accepts either a full url or a database name in the configured organization.
func (s *Storage) DbUrl(name string) string {
	if strings.Contains(name, "://") {
		return name
	}
	url := fmt.Sprintf("libsql://%v-%v.turso.io", name, s.OrgName)
	if s.AuthToken != "" {
		url += "?authToken=" + s.AuthToken
	}
	return url
}

func (s *Storage) ConnectDb(name string) (*sql.DB, error) {
	return sql.Open("libsql", s.DbUrl(name))
}

func (s *Storage) InitResultsDb(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		time TEXT,
		namespace TEXT,
		input TEXT,
		iterations INTEGER,
		workers INTEGER,
		functions TEXT,
		arch TEXT,
		hostname TEXT,
		platform TEXT,
		cpu INTEGER,
		freq REAL,
		ram REAL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		run TEXT,
		measurement TEXT,
		iteration INTEGER,
		value INTEGER,
		PRIMARY KEY (run, measurement, iteration)
	)`)
	if err != nil {
		return err
	}
	return nil
}

// Measurements flattens the record into rows, values in microseconds.
// Per-iteration service times are numbered from 1.
func (r *RunRecord) Measurements() []Measurement {
	measurements := []Measurement{
		{Name: "completion_time", Value: r.Summary.Completion.Microseconds()},
		{Name: "initialization_overhead", Value: r.Summary.Initialization.Microseconds()},
		{Name: "computation_time", Value: r.Summary.Computation.Microseconds()},
	}
	if r.Summary.HasAverageService {
		measurements = append(measurements, Measurement{
			Name:  "average_service_time",
			Value: r.Summary.AverageService.Microseconds(),
		})
	}
	for i, service := range r.Services {
		measurements = append(measurements, Measurement{
			Name:      "service_time",
			Iteration: i + 1,
			Value:     service.Microseconds(),
		})
	}
	return measurements
}

func (s *Storage) SaveRun(ctx context.Context, db *sql.DB, run *RunRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.Id,
		run.Time.Format("2006-01-02 15:04:05"),
		run.Config.Namespace,
		run.Config.Input,
		run.Config.Iterations,
		run.Config.Workers,
		strings.Join(run.Config.Functions, ","),
		run.Host.Arch,
		run.Host.Hostname,
		run.Host.Platform,
		run.Host.CPUCount,
		run.Host.CPUFreq,
		run.Host.RAM,
	)
	if err != nil {
		return err
	}
	for _, m := range run.Measurements() {
		_, err = tx.ExecContext(ctx, "INSERT INTO measurements VALUES (?, ?, ?, ?)", run.Id, m.Name, m.Iteration, m.Value)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
