package marker

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelgado/geomapa/internal/types"
)

func TestMarkerRepositoryInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewMarkerRepository(mockPool, slog.Default())

		mockPool.ExpectExec("INSERT INTO markers").
			WithArgs("a@x.com", "Lima", -12.05, -77.04, "").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.Insert(ctx, types.Marker{
			Email:    "a@x.com",
			Ciudad:   "Lima",
			Latitud:  -12.05,
			Longitud: -77.04,
		})

		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("StorageUnavailable", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewMarkerRepository(mockPool, slog.Default())

		mockPool.ExpectExec("INSERT INTO markers").
			WithArgs("a@x.com", "Lima", -12.05, -77.04, "").
			WillReturnError(errors.New("connection refused"))

		err = repo.Insert(ctx, types.Marker{
			Email:    "a@x.com",
			Ciudad:   "Lima",
			Latitud:  -12.05,
			Longitud: -77.04,
		})

		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestMarkerRepositoryListByEmail(t *testing.T) {
	ctx := context.Background()
	columns := []string{"email", "ciudad", "latitud", "longitud", "imagen_url"}

	t.Run("ReturnsMarkersInOrder", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewMarkerRepository(mockPool, slog.Default())

		mockPool.ExpectQuery("SELECT email, ciudad, latitud, longitud, imagen_url").
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("a@x.com", "Lima", -12.05, -77.04, "").
				AddRow("a@x.com", "Cusco", -13.53, -71.97, "https://img.example.com/cusco.jpg"))

		markers, err := repo.ListByEmail(ctx, "a@x.com")

		require.NoError(t, err)
		require.Len(t, markers, 2)
		assert.Equal(t, types.Marker{
			Email:    "a@x.com",
			Ciudad:   "Lima",
			Latitud:  -12.05,
			Longitud: -77.04,
		}, markers[0])
		assert.Equal(t, "Cusco", markers[1].Ciudad)
		assert.Equal(t, "https://img.example.com/cusco.jpg", markers[1].ImagenURL)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EmptyForUnknownEmail", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewMarkerRepository(mockPool, slog.Default())

		mockPool.ExpectQuery("SELECT email, ciudad, latitud, longitud, imagen_url").
			WithArgs("nobody@x.com").
			WillReturnRows(pgxmock.NewRows(columns))

		markers, err := repo.ListByEmail(ctx, "nobody@x.com")

		require.NoError(t, err)
		assert.NotNil(t, markers)
		assert.Empty(t, markers)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewMarkerRepository(mockPool, slog.Default())

		mockPool.ExpectQuery("SELECT email, ciudad, latitud, longitud, imagen_url").
			WithArgs("a@x.com").
			WillReturnError(errors.New("connection refused"))

		_, err = repo.ListByEmail(ctx, "a@x.com")

		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
