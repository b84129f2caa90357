package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image/png"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/local/receiptimport/internal/capture"
)

// Options configures the S3 page archive.
type Options struct {
	Bucket string
	Prefix string
	Region string

	// Static credentials; when empty the default AWS chain is used.
	AccessKey string
	SecretKey string
}

// S3Archive stores the winning page image of each import in S3, keyed by
// content hash so re-importing the same receipt is idempotent. Archival is
// best-effort by contract: callers must not fail an import on archive errors.
type S3Archive struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func NewS3Archive(ctx context.Context, opts Options) (*S3Archive, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive bucket not configured")
	}

	var loadOpts []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(cfg)
	return &S3Archive{
		uploader: manager.NewUploader(cli),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

// Archive encodes the page as PNG and uploads it under a blake2b content
// key. Returns the object key.
func (a *S3Archive) Archive(ctx context.Context, page capture.Page) (string, error) {
	if !page.Accessible() {
		return "", fmt.Errorf("page has no pixel data")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, page.Gray()); err != nil {
		return "", fmt.Errorf("encode page png: %w", err)
	}

	sum := blake2b.Sum256(buf.Bytes())
	key := fmt.Sprintf("%s/%s.png", a.prefix, hex.EncodeToString(sum[:16]))

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	log.Debug().Str("bucket", a.bucket).Str("key", key).Int("bytes", buf.Len()).Msg("page archived")
	return key, nil
}
