package marker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"

	"github.com/jdelgado/geomapa/app/observability/metrics"
	"github.com/jdelgado/geomapa/internal/types"
)

var _ MarkerRepository = (*PostgresMarkerRepository)(nil)

// PgxPool is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MarkerRepository defines the contract for marker persistence.
type MarkerRepository interface {
	// Insert appends a new marker. No uniqueness constraint applies;
	// concurrent identical inserts produce distinct records.
	Insert(ctx context.Context, m types.Marker) error
	// ListByEmail returns all markers whose email matches exactly, in
	// insertion order, internal ids stripped. Unknown emails yield an
	// empty slice, not an error.
	ListByEmail(ctx context.Context, email string) ([]types.Marker, error)
}

type PostgresMarkerRepository struct {
	logger *slog.Logger
	db     PgxPool
}

func NewMarkerRepository(db PgxPool, logger *slog.Logger) *PostgresMarkerRepository {
	return &PostgresMarkerRepository{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresMarkerRepository) Insert(ctx context.Context, m types.Marker) error {
	ctx, span := otel.Tracer("MarkerRepository").Start(ctx, "Insert")
	defer span.End()

	start := time.Now()
	query := `
        INSERT INTO markers (email, ciudad, latitud, longitud, imagen_url)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, m.Email, m.Ciudad, m.Latitud, m.Longitud, m.ImagenURL)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert marker: %w", err)
	}

	r.logger.DebugContext(ctx, "Marker inserted",
		slog.String("email", m.Email),
		slog.String("ciudad", m.Ciudad),
	)
	return nil
}

func (r *PostgresMarkerRepository) ListByEmail(ctx context.Context, email string) ([]types.Marker, error) {
	ctx, span := otel.Tracer("MarkerRepository").Start(ctx, "ListByEmail")
	defer span.End()

	start := time.Now()
	query := `
        SELECT email, ciudad, latitud, longitud, imagen_url
        FROM markers
        WHERE email = $1
        ORDER BY created_at, id
    `
	rows, err := r.db.Query(ctx, query, email)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()

	markers := make([]types.Marker, 0)
	for rows.Next() {
		var m types.Marker
		if err := rows.Scan(&m.Email, &m.Ciudad, &m.Latitud, &m.Longitud, &m.ImagenURL); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed reading markers: %w", err)
	}
	return markers, nil
}
