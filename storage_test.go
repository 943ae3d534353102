package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDbUrl(t *testing.T) {
	storage := Storage{OrgName: "org", AuthToken: "token"}
	require.Equal(t, "libsql://runs-org.turso.io?authToken=token", storage.DbUrl("runs"))
	require.Equal(t, "http://127.0.0.1:8080", storage.DbUrl("http://127.0.0.1:8080"))

	storage.AuthToken = ""
	require.Equal(t, "libsql://runs-org.turso.io", storage.DbUrl("runs"))
}

func TestRunMeasurements(t *testing.T) {
	run := RunRecord{
		Summary: Summary{
			Completion:        9_500_000,
			Initialization:    2_000_500,
			Computation:       7_499_500,
			AverageService:    2_999_500,
			HasAverageService: true,
		},
		Services: []time.Duration{2_000_001, 3_999_000},
	}
	require.Equal(t, []Measurement{
		{Name: "completion_time", Value: 9500},
		{Name: "initialization_overhead", Value: 2000},
		{Name: "computation_time", Value: 7499},
		{Name: "average_service_time", Value: 2999},
		{Name: "service_time", Iteration: 1, Value: 2000},
		{Name: "service_time", Iteration: 2, Value: 3999},
	}, run.Measurements())

	run.Summary.HasAverageService = false
	run.Services = nil
	require.Len(t, run.Measurements(), 3)
}
