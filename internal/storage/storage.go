package storage

import (
	"context"
	"fmt"
	"strings"
)

const scheme = "s3://"

// Client abstracts the subset of object store operations the fetcher needs.
type Client interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
	DownloadToFile(ctx context.Context, bucket, key, destPath string) error
}

// IsLocation reports whether rawURL addresses the object store.
func IsLocation(rawURL string) bool {
	return strings.HasPrefix(rawURL, scheme)
}

// ParseLocation splits "s3://bucket/key" into bucket and key.
func ParseLocation(location string) (string, string, error) {
	if location == "" {
		return "", "", fmt.Errorf("empty s3 location")
	}
	if !IsLocation(location) {
		return "", "", fmt.Errorf("invalid s3 location %s", location)
	}
	parts := strings.SplitN(strings.TrimPrefix(location, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid s3 location %s", location)
	}
	return parts[0], parts[1], nil
}
