package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectAvailable(t *testing.T) {
	assert.Equal(t, int64(3300), ProjectAvailable(4500, 1200))
	assert.Equal(t, int64(3300), ProjectAvailable(4500, 1200))
	assert.Equal(t, int64(-200), ProjectAvailable(0, 200))
	assert.Equal(t, int64(0), ProjectAvailable(0, 0))
}

func TestProjectionService_MonthProjection(t *testing.T) {
	ctx := context.Background()
	identity := testIdentity()

	t.Run("every category appears, empty ones with zeros", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewProjectionService(db)

		mock.ExpectQuery("SELECT c.public_id, .* FROM categories c").
			WithArgs(identity.UserID, "2026-02-01", "2026-03-01").
			WillReturnRows(sqlmock.NewRows([]string{"public_id", "assigned", "activity"}).
				AddRow(categoryA, 4500, 1200).
				AddRow("ca0000000000000000000000000000cb", 0, 0))

		projections, err := svc.MonthProjection(ctx, identity, "2026-02")
		require.NoError(t, err)
		require.Len(t, projections, 2)

		assert.Equal(t, categoryA, projections[0].CategoryID)
		assert.Equal(t, int64(4500), projections[0].Assigned)
		assert.Equal(t, int64(1200), projections[0].Activity)
		assert.Equal(t, int64(3300), projections[0].Available)

		assert.Equal(t, int64(0), projections[1].Assigned)
		assert.Equal(t, int64(0), projections[1].Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("december rolls into the next year", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewProjectionService(db)

		mock.ExpectQuery("FROM categories c").
			WithArgs(identity.UserID, "2025-12-01", "2026-01-01").
			WillReturnRows(sqlmock.NewRows([]string{"public_id", "assigned", "activity"}))

		projections, err := svc.MonthProjection(ctx, identity, "2025-12")
		require.NoError(t, err)
		assert.NotNil(t, projections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed month", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewProjectionService(db)

		for _, month := range []string{"2026/02", "2026-2", "february"} {
			_, err := svc.MonthProjection(ctx, identity, month)
			assert.ErrorIs(t, err, ErrValidation)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectionService_Dashboard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	identity := testIdentity()
	svc := NewProjectionService(db)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(s.inflow\\), 0\\), COALESCE\\(SUM\\(s.outflow\\), 0\\)").
		WithArgs(identity.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"inflow", "outflow"}).AddRow(4500, 1200))

	dashboard, err := svc.Dashboard(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), dashboard.Inflow)
	assert.Equal(t, int64(1200), dashboard.Outflow)
	assert.Equal(t, int64(3300), dashboard.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}
