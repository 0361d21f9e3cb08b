package processor

import (
	"context"
	"errors"

	"github.com/kalaconnect/kalaconnect-backend/pkg/storage/gcs"
)

type objectDownloader interface {
	Download(ctx context.Context, bucket, object string) (*gcs.Object, error)
}

// GCSFetcher retrieves uploaded objects through the storage client.
type GCSFetcher struct {
	client objectDownloader
}

func NewGCSFetcher(client objectDownloader) (*GCSFetcher, error) {
	if client == nil {
		return nil, errors.New("gcs client is required")
	}
	return &GCSFetcher{client: client}, nil
}

func (f *GCSFetcher) Fetch(ctx context.Context, bucket, objectName string) (*Media, error) {
	obj, err := f.client.Download(ctx, bucket, objectName)
	if err != nil {
		return nil, err
	}
	return &Media{
		Bucket:      obj.Bucket,
		ObjectName:  obj.Name,
		ContentType: obj.ContentType,
		Data:        obj.Data,
	}, nil
}
