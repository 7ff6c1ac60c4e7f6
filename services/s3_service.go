package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PhotoResolver turns a stored photo reference into a URL a client can load.
type PhotoResolver interface {
	Resolve(ctx context.Context, photo string) (string, error)
}

// PassThroughResolver returns photo references unchanged.
type PassThroughResolver struct{}

func (PassThroughResolver) Resolve(_ context.Context, photo string) (string, error) {
	return photo, nil
}

// GetObjectPresigner is the part of *s3.PresignClient the resolver uses.
type GetObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3PhotoResolver presigns GET URLs for photos stored as S3 object keys.
// Absolute URLs are returned as they are.
type S3PhotoResolver struct {
	Presigner GetObjectPresigner
	Bucket    string
	Expires   time.Duration
}

// NewS3PhotoResolver builds a resolver backed by the default AWS config.
func NewS3PhotoResolver(ctx context.Context, region, bucket string, expires time.Duration) (*S3PhotoResolver, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3PhotoResolver{
		Presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		Bucket:    bucket,
		Expires:   expires,
	}, nil
}

func (r *S3PhotoResolver) Resolve(ctx context.Context, photo string) (string, error) {
	if photo == "" || strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		return photo, nil
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(strings.TrimPrefix(photo, "/")),
	}
	req, err := r.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(r.Expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign photo %q: %w", photo, err)
	}
	return req.URL, nil
}

// resolvePhoto falls back to the raw reference when presigning fails so a
// missing photo never fails the surrounding read.
func resolvePhoto(ctx context.Context, r PhotoResolver, photo string) string {
	if r == nil {
		return photo
	}
	url, err := r.Resolve(ctx, photo)
	if err != nil {
		return photo
	}
	return url
}
