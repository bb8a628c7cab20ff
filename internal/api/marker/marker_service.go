package marker

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/jdelgado/geomapa/app/observability/metrics"
	"github.com/jdelgado/geomapa/internal/api"
	"github.com/jdelgado/geomapa/internal/api/geocode"
	"github.com/jdelgado/geomapa/internal/api/media"
	"github.com/jdelgado/geomapa/internal/types"
)

// WarningImageNotUploaded signals that the marker was stored but its image
// upload failed; the form flow surfaces it to the user.
const WarningImageNotUploaded = "imagen_no_subida"

var _ MarkerService = (*ServiceImpl)(nil)

// MarkerService orchestrates marker creation and retrieval.
type MarkerService interface {
	// Create validates and stores a marker supplied by an API caller.
	// Out-of-range coordinates or a malformed email map to ErrValidation.
	Create(ctx context.Context, m types.Marker) error
	// CreateFromForm derives coordinates server-side, uploads the image
	// when a non-empty filename was submitted, and stores the marker.
	// A geocoding miss aborts with ErrNoResults; an upload failure is
	// non-fatal and reported through the returned warning.
	CreateFromForm(ctx context.Context, email, ciudad string, image io.Reader, filename string) (types.Marker, string, error)
	ListByEmail(ctx context.Context, email string) ([]types.Marker, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     MarkerRepository
	geocoder geocode.Client
	uploader media.Uploader
	validate *validator.Validate
}

func NewMarkerService(repo MarkerRepository, geocoder geocode.Client, uploader media.Uploader, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		geocoder: geocoder,
		uploader: uploader,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *ServiceImpl) Create(ctx context.Context, m types.Marker) error {
	if err := s.validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", api.ErrValidation, err)
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return err
	}
	metrics.Get().MarkerInsertsTotal.Add(ctx, 1)
	return nil
}

func (s *ServiceImpl) CreateFromForm(ctx context.Context, email, ciudad string, image io.Reader, filename string) (types.Marker, string, error) {
	lat, lon, err := s.geocoder.Lookup(ctx, ciudad)
	if err != nil {
		// ErrNoResults and ErrExternalTimeout pass through so the handler
		// can choose the user-visible message.
		return types.Marker{}, "", err
	}

	warning := ""
	imagenURL := ""
	// An empty filename means "no image"; the form field itself is always
	// present in the multipart body.
	if filename != "" {
		url, err := s.uploader.Upload(ctx, image, filename)
		if err != nil {
			metrics.Get().ImageUploadErrorsTotal.Add(ctx, 1)
			s.logger.ErrorContext(ctx, "Image upload failed, storing marker without image",
				slog.String("filename", filename),
				slog.Any("error", err),
			)
			warning = WarningImageNotUploaded
		} else {
			imagenURL = url
		}
	}

	m := types.Marker{
		Email:     email,
		Ciudad:    ciudad,
		Latitud:   lat,
		Longitud:  lon,
		ImagenURL: imagenURL,
	}
	if err := s.validate.Struct(m); err != nil {
		return types.Marker{}, "", fmt.Errorf("%w: %v", api.ErrValidation, err)
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return types.Marker{}, "", err
	}
	metrics.Get().MarkerInsertsTotal.Add(ctx, 1)
	return m, warning, nil
}

func (s *ServiceImpl) ListByEmail(ctx context.Context, email string) ([]types.Marker, error) {
	return s.repo.ListByEmail(ctx, email)
}
