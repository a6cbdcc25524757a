package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"firds/shared/config"
	"firds/shared/domain/observability"
	"firds/shared/domain/storage"
)

// client implements the ObjectStorage interface for AWS S3
type client struct {
	s3Client      *s3.Client
	defaultBucket string
	region        string
	logger        observability.Logger
	metrics       observability.Metrics
}

// New creates a new S3 storage client and makes sure the bucket exists
func New(cfg *config.StorageConfig, logger observability.Logger, metrics observability.Metrics) (storage.ObjectStorage, error) {
	if cfg.BucketOrPath == "" {
		return nil, fmt.Errorf("invalid S3 configuration: bucket is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Build AWS configuration
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	// Create S3 client with custom options
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	c := &client{
		s3Client:      s3Client,
		defaultBucket: cfg.BucketOrPath,
		region:        cfg.S3.Region,
		logger:        logger,
		metrics:       metrics,
	}

	if err := c.ensureBucketExists(ctx); err != nil {
		logger.Error("Failed to verify bucket existence", "error", err, "bucket", c.defaultBucket)
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	logger.Info("S3 client initialized successfully", "bucket", c.defaultBucket, "region", c.region)
	return c, nil
}

// Put stores an object in S3
func (c *client) Put(ctx context.Context, bucket, key string, reader io.Reader, metadata storage.ObjectMetadata) error {
	start := time.Now()

	// If bucket is not specified, use the default from config
	if bucket == "" {
		bucket = c.defaultBucket
	}

	// Read the content into a buffer to determine size
	buf := &bytes.Buffer{}
	bytesRead, err := io.Copy(buf, reader)
	if err != nil {
		c.logger.Error("Failed to read content",
			"error", err,
			"bucket", bucket,
			"key", key)
		c.metrics.IncrementCounter("s3.put.errors", map[string]string{
			"error_type": "read_error",
		})
		return fmt.Errorf("failed to read content: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(bytesRead),
	}
	if metadata.ContentType != "" {
		input.ContentType = aws.String(metadata.ContentType)
	}
	if len(metadata.UserMetadata) > 0 {
		input.Metadata = metadata.UserMetadata
	}

	_, err = c.s3Client.PutObject(ctx, input)
	if err != nil {
		c.logger.Error("Failed to put object",
			"error", err,
			"bucket", bucket,
			"key", key)
		c.metrics.IncrementCounter("s3.put.errors", map[string]string{
			"error_type": "s3_error",
		})
		return fmt.Errorf("failed to put object: %w", err)
	}

	duration := time.Since(start)
	c.logger.Info("Object stored successfully",
		"bucket", bucket,
		"key", key,
		"size_bytes", bytesRead,
		"duration_ms", duration.Milliseconds())

	c.metrics.IncrementCounter("s3.put.success", nil)
	c.metrics.RecordHistogram("s3.put.duration", duration.Seconds(), nil)
	c.metrics.RecordHistogram("s3.put.size", float64(bytesRead), nil)

	return nil
}

// Get retrieves an object from S3
func (c *client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" {
		bucket = c.defaultBucket
	}

	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			c.metrics.IncrementCounter("s3.get.not_found", nil)
			return nil, storage.ErrObjectNotFound
		}

		c.logger.Error("Failed to get object",
			"error", err,
			"bucket", bucket,
			"key", key)
		c.metrics.IncrementCounter("s3.get.errors", nil)
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	c.metrics.IncrementCounter("s3.get.success", nil)
	return result.Body, nil
}

// Exists checks if an object exists in S3
func (c *client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" {
		bucket = c.defaultBucket
	}

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		c.logger.Error("Failed to check object existence",
			"error", err,
			"bucket", bucket,
			"key", key)
		c.metrics.IncrementCounter("s3.exists.errors", nil)
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// createBucket creates the bucket in the configured region
func (c *client) createBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	// Add location constraint for non us-east-1 regions
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.region),
		}
	}

	_, err := c.s3Client.CreateBucket(ctx, input)
	if err != nil {
		var bae *s3types.BucketAlreadyExists
		var baoyb *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &bae) || errors.As(err, &baoyb) {
			c.logger.Info("Bucket already exists", "bucket", bucket)
			return nil
		}

		c.metrics.IncrementCounter("s3.create_bucket.errors", nil)
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	c.logger.Info("Bucket created successfully", "bucket", bucket)
	c.metrics.IncrementCounter("s3.create_bucket.success", nil)
	return nil
}

// ensureBucketExists checks if the configured bucket exists
func (c *client) ensureBucketExists(ctx context.Context) error {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.defaultBucket),
	})

	if err != nil {
		var nse *s3types.NotFound
		if errors.As(err, &nse) {
			c.logger.Info("Bucket does not exist, attempting to create",
				"bucket", c.defaultBucket)
			return c.createBucket(ctx, c.defaultBucket)
		}
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	c.logger.Debug("Bucket exists", "bucket", c.defaultBucket)
	return nil
}

// buildAWSConfig builds the AWS configuration from the storage config
func buildAWSConfig(ctx context.Context, storageConfig *config.StorageConfig) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	s3Config := storageConfig.S3

	if s3Config.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(s3Config.Region))
	}

	creds, err := resolveCredentials(ctx, s3Config)
	if err != nil {
		return aws.Config{}, err
	}
	if creds != nil {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(creds))
	}

	// S3-compatible endpoints generally reject the newer default checksums
	if s3Config.Endpoint != "" {
		optFns = append(optFns,
			awsconfig.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
			awsconfig.WithResponseChecksumValidation(aws.ResponseChecksumValidationWhenRequired),
		)
	}

	// Set custom retry configuration
	if storageConfig.MaxRetries > 0 {
		optFns = append(optFns, awsconfig.WithRetryMaxAttempts(storageConfig.MaxRetries))
	}

	// A buildable client keeps AWS_CA_BUNDLE working
	optFns = append(optFns, awsconfig.WithHTTPClient(
		awshttp.NewBuildableClient().WithTimeout(storageConfig.Timeout),
	))

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}

// isNotFoundError checks if an error is a not found error
func isNotFoundError(err error) bool {
	var nsk *s3types.NoSuchKey
	var nse *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nse)
}
