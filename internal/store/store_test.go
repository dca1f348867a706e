package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-records-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_DeleteLookup(t *testing.T) {
	countSQL := regexp.QuoteMeta(`SELECT count(*) FROM "machines" WHERE model_id = $1`)
	deleteSQL := regexp.QuoteMeta(`DELETE FROM machine_models WHERE id = $1`)

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
	}{
		{
			name: "Referenced row is protected",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(countSQL).WithArgs(7).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				mock.ExpectRollback()
			},
			expectedErr: ErrInUse,
		},
		{
			name: "Unreferenced row is deleted",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(countSQL).WithArgs(7).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec(deleteSQL).WithArgs(7).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Missing row reports not found",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(countSQL).WithArgs(7).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec(deleteSQL).WithArgs(7).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := store.DeleteLookup(context.Background(), MachineModels, 7)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_DeleteMachineCascades(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "maintenances" WHERE machine_id = $1`)).
		WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "claims" WHERE machine_id = $1`)).
		WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "machines" WHERE "machines"."id" = $1`)).
		WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteMachine(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListUsersByRole(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE role = $1 ORDER BY email ASC`)).
		WithArgs("client").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow(2, "a@example.com", "client").
			AddRow(3, "b@example.com", "client"))

	users, err := store.ListUsers(context.Background(), "client")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf("failure_nodes")
	require.True(t, ok)
	assert.Equal(t, FailureNodes.Slug, k.Slug)
	assert.Equal(t, []reference{{"claims", "failure_node_id"}}, k.refs)

	_, ok = KindOf("users")
	assert.False(t, ok)
	assert.Len(t, Kinds(), 8)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_UpsertUsers(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WithArgs("manager@example.com", "hash", "manager", Any{}, Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := store.UpsertUsers(context.Background(), []model.User{{Email: " Manager@Example.com ", PasswordHash: "hash", Role: "manager"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
