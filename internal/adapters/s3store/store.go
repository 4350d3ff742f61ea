// Package s3store implements ports.BlobStore on S3 or an S3-compatible service.
// Buckets play the role of document containers.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/heiraid/heiraid-api/internal/adapters/vendor"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

var _ ports.BlobStore = (*Store)(nil)

// API is the subset of the S3 client used by Store.
type API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config contains connection settings.
type Config struct {
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string // S3-compatible services
	ForcePathStyle bool
	// ContainerPrefix limits listed buckets to those starting with it.
	ContainerPrefix string
	HTTPClient      *http.Client
}

// Store lists and reads documents in buckets.
type Store struct {
	api    API
	prefix string
}

// New loads AWS configuration and builds a Store.
// Static credentials are used when both keys are set; otherwise the default chain applies.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Region == "" {
		return nil, errors.New("storage region is required")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	if cfg.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(cfg.HTTPClient))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return NewWithAPI(client, cfg.ContainerPrefix), nil
}

// NewWithAPI builds a Store over an existing client.
func NewWithAPI(api API, containerPrefix string) *Store {
	return &Store{api: api, prefix: containerPrefix}
}

// ListContainers returns bucket names, sorted, filtered by the configured prefix.
func (s *Store) ListContainers(ctx context.Context) ([]string, error) {
	out, err := s.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, classify("list containers", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		if name == "" || !strings.HasPrefix(name, s.prefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListBlobs returns every object in container.
func (s *Store) ListBlobs(ctx context.Context, container string) ([]ports.BlobInfo, error) {
	if container == "" {
		return nil, apperrors.ValidationField("containerName", "Container name is required.")
	}
	p := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{Bucket: aws.String(container)})

	blobs := []ports.BlobInfo{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classify("list blobs", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			blobs = append(blobs, ports.BlobInfo{
				Name:         key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return blobs, nil
}

// OpenBlob streams an object body.
func (s *Store) OpenBlob(ctx context.Context, container, name string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, classify("get blob", err)
	}
	return out.Body, nil
}

func classify(op string, err error) error {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Container not found.")
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Blob not found.")
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.ErrorMessage()
		if msg == "" {
			msg = apiErr.ErrorCode()
		}
		if msg == "" {
			msg = vendor.DefaultMessage
		}
		return apperrors.Upstream(msg, 0, fmt.Errorf("%s: %w", op, err))
	}
	return vendor.Wrap(op, err)
}
