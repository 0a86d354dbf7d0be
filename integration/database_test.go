//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/huangsam/footprint/schema"
)

// TestFootprintWithMySQL tests the footprint CLI with a MySQL backend.
func TestFootprintWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "footprint",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/footprint?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestFootprintWithPostgres tests the footprint CLI with a PostgreSQL backend.
func TestFootprintWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario profiles a sample repository twice against one backend and
// checks the stored history and change log.
func runBackendScenario(t *testing.T, backend, connStr string) {
	repo := writeSampleRepo(t)
	env := []string{
		"FOOTPRINT_CACHE_BACKEND=" + backend,
		"FOOTPRINT_CACHE_DB_CONNECT=" + connStr,
		"FOOTPRINT_HISTORY_BACKEND=" + backend,
		"FOOTPRINT_HISTORY_DB_CONNECT=" + connStr,
		"FOOTPRINT_REPO_ID=integration/sample",
	}

	_, err := runFootprint(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runFootprint(t, env, "history", "clear")
	require.NoError(t, err)

	// First run has nothing to compare against
	out, err := runFootprint(t, env, "profile", repo, "--output", "json")
	require.NoError(t, err)
	var first schema.ProfileResult
	require.NoError(t, json.Unmarshal(out, &first))
	assert.True(t, first.Stored)
	assert.Equal(t, schema.NoPreviousMessage, first.Changes.Message)
	assert.Equal(t, 2, first.Record.Profile.FilesAnalyzed)

	// Second run of the same tree is stored without changes
	out, err = runFootprint(t, env, "profile", repo, "--output", "json")
	require.NoError(t, err)
	var second schema.ProfileResult
	require.NoError(t, json.Unmarshal(out, &second))
	assert.True(t, second.Stored)
	assert.Greater(t, second.Record.ID, first.Record.ID)
	assert.Equal(t, schema.NoChangesMessage, second.Changes.Message)

	out, err = runFootprint(t, env, "compare", repo, "--output", "json")
	require.NoError(t, err)
	var comparison schema.ComparisonResult
	require.NoError(t, json.Unmarshal(out, &comparison))
	require.NotNil(t, comparison.Previous)
	assert.Equal(t, second.Record.ID, comparison.Previous.ID)

	out, err = runFootprint(t, env, "history", "changes", repo, "--output", "json")
	require.NoError(t, err)
	var entries []schema.ChangeLogEntry
	require.NoError(t, json.Unmarshal(out, &entries))

	_, err = runFootprint(t, env, "cache", "status")
	require.NoError(t, err)
	_, err = runFootprint(t, env, "history", "status")
	require.NoError(t, err)
}
