package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/realtyreach/realtyreach/models"
)

func newUpsertDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func testContact() *models.Contact {
	return &models.Contact{
		UserID:     uuid.New(),
		CampaignID: 1,
		ScreenName: "jane-doe",
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		IsTeamLead: true,
	}
}

func TestUpsertByScreenNameReportsInsert(t *testing.T) {
	db, mock := newUpsertDB(t)
	repo := NewContactRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	inserted, err := repo.UpsertByScreenName(context.Background(), testContact())
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertByScreenNameReportsUpdateNotInsert(t *testing.T) {
	db, mock := newUpsertDB(t)
	repo := NewContactRepository(db)

	// The conflict-update path still returns one affected row from Postgres,
	// so the pre-existing row is what must flip the result to false.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	inserted, err := repo.UpsertByScreenName(context.Background(), testContact())
	require.NoError(t, err)
	require.False(t, inserted, "a re-scraped contact must not count as newly saved")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertByZpidReportsUpdateNotInsert(t *testing.T) {
	db, mock := newUpsertDB(t)
	repo := NewListingRepository(db)

	listing := &models.Listing{
		UserID:          uuid.New(),
		ContactID:       42,
		Zpid:            "zpid-1001",
		HomeType:        "SINGLE_FAMILY",
		City:            "Austin",
		State:           "TX",
		Bedrooms:        3,
		Bathrooms:       2,
		Price:           450000,
		LivingAreaValue: 1800,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "listings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "listings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	inserted, err := repo.UpsertByZpid(context.Background(), listing)
	require.NoError(t, err)
	require.False(t, inserted, "a refreshed listing must not count as newly saved")
	require.NoError(t, mock.ExpectationsWereMet())
}
