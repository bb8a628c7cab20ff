package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/jdelgado/geomapa/internal/api"
)

var _ Uploader = (*CloudinaryUploader)(nil)

// Uploader stores an image stream with an external host and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// CloudinaryUploader uploads images to a Cloudinary folder.
type CloudinaryUploader struct {
	logger  *slog.Logger
	cld     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string, timeout time.Duration, logger *slog.Logger) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary client: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CloudinaryUploader{
		logger:  logger,
		cld:     cld,
		folder:  folder,
		timeout: timeout,
	}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: uploading %q: %v", api.ErrExternalTimeout, filename, err)
		}
		return "", fmt.Errorf("%w: %v", api.ErrUploadFailed, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", api.ErrUploadFailed, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: empty secure URL in response", api.ErrUploadFailed)
	}

	u.logger.InfoContext(ctx, "Image uploaded",
		slog.String("filename", filename),
		slog.String("public_id", result.PublicID),
	)
	return result.SecureURL, nil
}
