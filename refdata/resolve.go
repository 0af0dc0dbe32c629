// Package refdata implements reference-data resolution and loading:
// turning a configured path_prefix into a local CSV file (with retry
// on remote fetches), and parsing that CSV into the shapes the
// Interpolation Service and the Base Demographics Module's life table
// consume (spec §6's "Reference data layout").
package refdata

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/s3blob"
)

// Resolve turns relPath, joined onto pathPrefix, into the path of a
// local file, downloading it first if pathPrefix names a remote
// location. A bare local pathPrefix (the common case in tests and
// single-machine runs) is joined with relPath and returned without any
// download. Any other scheme, gs:// included, is treated as a local
// path. Grounded on
// inmaputil/download.go's maybeDownload/OpenBucket, with retry added
// around the remote fetch (cenkalti/backoff), which the teacher's
// version lacks.
func Resolve(ctx context.Context, pathPrefix, relPath string) (string, error) {
	if isBlob(pathPrefix) {
		return resolveBlob(ctx, pathPrefix, relPath)
	}
	if strings.HasPrefix(pathPrefix, "http://") || strings.HasPrefix(pathPrefix, "https://") {
		return resolveHTTP(ctx, pathPrefix, relPath)
	}
	return filepath.Join(pathPrefix, relPath), nil
}

func isBlob(prefix string) bool {
	return strings.HasPrefix(prefix, "s3://") || strings.HasPrefix(prefix, "file://")
}

func resolveHTTP(ctx context.Context, prefix, relPath string) (string, error) {
	full := strings.TrimRight(prefix, "/") + "/" + relPath
	dir, err := ioutil.TempDir("", "vivarium-refdata")
	if err != nil {
		return "", fmt.Errorf("refdata: creating download directory: %w", err)
	}
	dest := filepath.Join(dir, filepath.Base(relPath))

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("refdata: %s: server error %d", full, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("refdata: %s: status %d", full, resp.StatusCode))
		}
		w, err := os.Create(dest)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer w.Close()
		_, err = io.Copy(w, resp.Body)
		return err
	}

	if err := backoff.Retry(op, retryPolicy(ctx)); err != nil {
		return "", err
	}
	return dest, nil
}

func resolveBlob(ctx context.Context, prefix, relPath string) (string, error) {
	u, err := url.Parse(prefix)
	if err != nil {
		return "", fmt.Errorf("refdata: parsing path_prefix %q: %w", prefix, err)
	}
	bucket, err := openBucket(ctx, u)
	if err != nil {
		return "", err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key != "" {
		key = strings.TrimSuffix(key, "/") + "/"
	}
	key += relPath

	dir, err := ioutil.TempDir("", "vivarium-refdata")
	if err != nil {
		return "", fmt.Errorf("refdata: creating download directory: %w", err)
	}
	dest := filepath.Join(dir, filepath.Base(relPath))

	op := func() error {
		r, err := bucket.NewReader(ctx, key)
		if err != nil {
			return err
		}
		defer r.Close()
		w, err := os.Create(dest)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer w.Close()
		_, err = io.Copy(w, r)
		return err
	}

	if err := backoff.Retry(op, retryPolicy(ctx)); err != nil {
		return "", err
	}
	return dest, nil
}

// openBucket opens the bucket named by u's scheme+host: "file" for the
// local filesystem (used in tests) and "s3" for AWS S3, mirroring
// inmaputil/download.go's OpenBucket. Google Cloud Storage is
// intentionally not wired here — see DESIGN.md.
func openBucket(ctx context.Context, u *url.URL) (*blob.Bucket, error) {
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("refdata: unsupported path_prefix scheme %q", u.Scheme)
	}
}

func s3Bucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	cfg := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	sess := session.Must(session.NewSession(cfg))
	return s3blob.OpenBucket(ctx, sess, bucketName)
}

func retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(b, ctx)
}
