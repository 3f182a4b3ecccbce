package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"device-inventory-backend/internal/model"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore opens a throwaway on-disk SQLite database with the
// device schema migrated.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "inventory.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Device{}, &model.DeviceLog{}))

	s := NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func sampleFields(mac string) model.DeviceFields {
	return model.DeviceFields{
		Name:       "sw1",
		IPAddress:  "10.0.0.1",
		MACAddress: mac,
		Location:   "rack1",
		DeviceType: "switch",
	}
}

func TestGormStore_Lifecycle(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	d := model.NewDevice(sampleFields("AA:BB:CC:DD:EE:FF"), now)
	require.NoError(t, s.Create(ctx, d))
	require.Len(t, d.ID, 24)

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "sw1", got.Name)
	assert.Equal(t, "switch", got.DeviceType)
	assert.True(t, now.Equal(got.CreatedAt))

	later := now.Add(time.Minute)
	updated, err := s.Update(ctx, d.ID, model.DeviceFields{
		Name: "sw1-renamed", IPAddress: "10.0.0.2", MACAddress: "AA:BB:CC:DD:EE:FF",
		Location: "rack2", DeviceType: "switch",
	}, later)
	require.NoError(t, err)
	assert.Equal(t, "sw1-renamed", updated.Name)
	assert.Equal(t, "rack2", updated.Location)
	assert.True(t, now.Equal(updated.CreatedAt), "created_at must not change")
	assert.True(t, later.Equal(updated.UpdatedAt))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, d.ID))
	_, err = s.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, d.ID), ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}

func TestGormStore_DuplicateMAC(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := model.NewDevice(sampleFields("AA:BB:CC:DD:EE:FF"), now)
	require.NoError(t, s.Create(ctx, first))

	second := model.NewDevice(sampleFields("AA:BB:CC:DD:EE:FF"), now)
	err := s.Create(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Empty(t, second.ID)

	other := model.NewDevice(sampleFields("11:22:33:44:55:66"), now)
	require.NoError(t, s.Create(ctx, other))

	_, err = s.Update(ctx, other.ID, sampleFields("AA:BB:CC:DD:EE:FF"), now)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGormStore_UpdateMissing(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.Update(context.Background(), "65a1b2c3d4e5f60718293a4b", sampleFields("AA:BB:CC:DD:EE:FF"), time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_PostgresErrors(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		run              func(s Store) error
		expectedErr      error
	}{
		{
			name: "Unique violation on insert is a duplicate",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "devices"`)).
					WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key value violates unique constraint \"uniq_mac\""})
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				return s.Create(context.Background(), model.NewDevice(sampleFields("AA:BB:CC:DD:EE:FF"), time.Now()))
			},
			expectedErr: ErrDuplicate,
		},
		{
			name: "Unique violation on update is a duplicate",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "devices" SET`)).
					WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				_, err := s.Update(context.Background(), "65a1b2c3d4e5f60718293a4b", sampleFields("AA:BB:CC:DD:EE:FF"), time.Now())
				return err
			},
			expectedErr: ErrDuplicate,
		},
		{
			name: "Delete matching nothing is not found",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "devices" WHERE id = $1`)).
					WithArgs("65a1b2c3d4e5f60718293a4b").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				return s.Delete(context.Background(), "65a1b2c3d4e5f60718293a4b")
			},
			expectedErr: ErrNotFound,
		},
		{
			name: "Get with no rows is not found",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "devices" WHERE id = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
			},
			run: func(s Store) error {
				_, err := s.Get(context.Background(), "65a1b2c3d4e5f60718293a4b")
				return err
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.mockExpectations(mock)

			err := tc.run(NewGormStore(db))
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ListFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "devices" ORDER BY created_at`)).
		WillReturnError(errors.New("connection refused"))

	_, err := NewGormStore(db).List(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
