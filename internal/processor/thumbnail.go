package processor

import (
	"context"
	"errors"
	"path"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

const thumbnailPrefix = "thumbnails/"

type objectUploader interface {
	Upload(ctx context.Context, bucket, object, contentType string, data []byte) error
}

// GCSThumbnailer stores a thumbnail copy of image uploads under a dedicated
// prefix. Best-effort: failures are logged and swallowed, and non-image
// media produces no thumbnail.
type GCSThumbnailer struct {
	client objectUploader
	logg   *logger.Logger
}

func NewGCSThumbnailer(client objectUploader, logg *logger.Logger) (*GCSThumbnailer, error) {
	if client == nil {
		return nil, errors.New("gcs client is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &GCSThumbnailer{client: client, logg: logg}, nil
}

func (t *GCSThumbnailer) Thumbnail(ctx context.Context, media *Media, mediaType enums.MediaType) (*string, error) {
	if mediaType != enums.MediaTypeImage {
		return nil, nil
	}

	object := thumbnailPrefix + path.Base(media.ObjectName)
	if err := t.client.Upload(ctx, media.Bucket, object, media.ContentType, media.Data); err != nil {
		t.logg.Warn(ctx, "thumbnail upload failed: "+err.Error())
		return nil, nil
	}

	thumbPath := "gs://" + media.Bucket + "/" + object
	return &thumbPath, nil
}
