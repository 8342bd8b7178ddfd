package promo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Loader struct {
	client ObjectGetter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Loader builds a loader using the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Loader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3LoaderWithClient reads objects "<prefix><path>" from bucket.
func NewS3LoaderWithClient(client ObjectGetter, bucket, prefix string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "promo-s3-loader").Str("bucket", bucket).Logger(),
	}
}

func (l *s3Loader) Load(ctx context.Context, path string) (CodeSet, error) {
	key := l.prefix + path

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to get promo object")
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	set, err := readCodes(ctx, out.Body)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to load promo object")
		return nil, fmt.Errorf("s3://%s/%s: %w", l.bucket, key, err)
	}

	l.logger.Info().
		Str("key", key).
		Int("codes", set.Size()).
		Msg("promo object loaded")

	return set, nil
}

type fallbackLoader struct {
	primary  Loader
	fallback Loader
	logger   zerolog.Logger
}

// NewFallbackLoader tries primary first and uses fallback when it fails.
// A nil primary means fallback only.
func NewFallbackLoader(primary, fallback Loader, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "promo-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) (CodeSet, error) {
	if l.primary != nil {
		set, err := l.primary.Load(ctx, path)
		if err == nil {
			return set, nil
		}
		l.logger.Warn().Err(err).Str("path", path).Msg("primary promo loader failed, using fallback")
	}

	return l.fallback.Load(ctx, path)
}
