package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Object is a downloaded GCS object with the metadata the pipeline needs.
type Object struct {
	Bucket      string
	Name        string
	ContentType string
	Data        []byte
}

var ErrObjectNotFound = errors.New("gcs object not found")

// ParseURI splits a gs://bucket/path/to/object URI into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not a gcs uri: %q", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed gcs uri: %q", uri)
	}
	return parts[0], parts[1], nil
}

// URI renders a bucket/object pair back into gs:// form.
func URI(bucket, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, object)
}

// Download fetches the object bytes via the JSON API, bounded by the
// configured max download size.
func (c *Client) Download(ctx context.Context, bucket, object string) (*Object, error) {
	if c == nil || c.tokenSource == nil {
		return nil, errors.New("gcs client not initialized")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if object == "" {
		return nil, errors.New("object name is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/storage/v1/b/%s/o/%s?alt=media",
		url.PathEscape(bucket),
		url.PathEscape(object),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrObjectNotFound
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return nil, fmt.Errorf("downloading %s/%s: %s: %s", bucket, object, resp.Status, strings.TrimSpace(string(b)))
		}
		return nil, fmt.Errorf("downloading %s/%s: %s", bucket, object, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", bucket, object, err)
	}
	if int64(len(data)) > c.maxDownloadBytes {
		return nil, fmt.Errorf("object %s/%s exceeds the %d byte download limit", bucket, object, c.maxDownloadBytes)
	}

	return &Object{
		Bucket:      bucket,
		Name:        object,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Upload writes the object via simple media upload.
func (c *Client) Upload(ctx context.Context, bucket, object, contentType string, data []byte) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if object == "" {
		return errors.New("object name is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		url.PathEscape(bucket),
		url.QueryEscape(object),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("uploading %s/%s: %s: %s", bucket, object, resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("uploading %s/%s: %s", bucket, object, resp.Status)
	}

	return nil
}
