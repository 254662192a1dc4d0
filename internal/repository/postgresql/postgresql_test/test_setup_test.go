package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var (
	testDB      *database.DB
	testDBErr   error
	testDBSetup sync.Once
)

// newTestDB connects to TEST_DATABASE_URL, applies migrations once and empties every
// table. Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBSetup.Do(func() {
		ctx := context.Background()
		testDB, testDBErr = database.NewPostgreSQLDB(ctx, dsn)
		if testDBErr != nil {
			return
		}
		testDBErr = database.Migrate(ctx, testDB)
	})
	require.NoError(t, testDBErr)

	truncateAllTables(t)
	return testDB
}

func truncateAllTables(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	tables := []string{"session_breaks", "work_sessions", "leave_requests", "holidays", "users"}
	for _, table := range tables {
		_, err := testDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate %s", table)
	}
}

func createTestUser(t *testing.T, db *database.DB, email string) user.User {
	t.Helper()

	created, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		Name:     "Test User",
		Email:    email,
		Role:     user.RoleEmployee,
		IsActive: true,
	})
	require.NoError(t, err)
	return created
}
