package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore fetches objects by bucket and key (s3:// resources)
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// S3Store reads objects from an S3 compatible endpoint
type S3Store struct {
	client *minio.Client
}

func NewS3Store(endpoint, accessKey, secretKey string, secure bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client for %s: %w", endpoint, err)
	}
	return &S3Store{client: client}, nil
}

func (s *S3Store) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// LoadResource reads a graph resource: an http(s) URL, an s3://bucket/key
// object or a local file. Resources ending in .gz are decompressed.
// store may be nil when no s3 resource is expected.
func LoadResource(ctx context.Context, resource string, store ObjectStore) ([]byte, error) {
	var body io.ReadCloser
	var err error
	// Check if it's a network resource, an object or a local one
	switch {
	case strings.HasPrefix(resource, "http://"), strings.HasPrefix(resource, "https://"):
		body, err = openHTTP(ctx, resource)
	case strings.HasPrefix(resource, "s3://"):
		body, err = openObject(ctx, resource, store)
	default:
		body, err = os.Open(resource)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", resource, err)
	}
	defer body.Close()

	reader := io.Reader(body)
	if strings.HasSuffix(resource, ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("could not decompress %s: %w", resource, err)
		}
		defer gz.Close()
		reader = gz
	}
	bytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", resource, err)
	}
	return bytes, nil
}

// LoadGraph reads resource and parses it as an edge list
func LoadGraph(ctx context.Context, resource string, store ObjectStore) (*Memory, error) {
	bytes, err := LoadResource(ctx, resource, store)
	if err != nil {
		return nil, err
	}
	g, err := ParseEdgeList(bytes)
	if err != nil {
		return nil, fmt.Errorf("could not load graph from %s: %w", resource, err)
	}
	return g, nil
}

func openHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func openObject(ctx context.Context, resource string, store ObjectStore) (io.ReadCloser, error) {
	if store == nil {
		return nil, fmt.Errorf("no object store configured")
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(resource, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("malformed object path")
	}
	return store.GetObject(ctx, bucket, key)
}

// ParseEdgeList builds a graph from "from to" (or "from,to") lines.
// A line with a single id declares an isolated vertex.
func ParseEdgeList(contents []byte) (*Memory, error) {
	g := NewMemory()
	// Split file contents in lines (based on newline delimiter)
	lines := strings.Split(strings.ReplaceAll(string(contents), "\r\n", "\n"), "\n")
	for i, line := range lines {
		ids, err := convertLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		switch len(ids) {
		case 0:
			// Comment line -> nothing to add
		case 1:
			g.AddVertex(ids[0])
		default:
			g.AddEdge(ids[0], ids[1])
		}
	}
	return g, nil
}

func convertLine(line string) ([]int64, error) {
	line = strings.TrimSpace(line)
	// Skip comment lines
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") || line == "" {
		return nil, nil
	}
	// Accept both space/tab and csv separators
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(tokens) > 2 {
		return nil, fmt.Errorf("expected at most two ids, got %d", len(tokens))
	}
	ids := make([]int64, len(tokens))
	for i, token := range tokens {
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not convert node %s", token)
		}
		ids[i] = id
	}
	return ids, nil
}
