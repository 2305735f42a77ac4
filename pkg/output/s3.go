package output

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the subset of the S3 client the sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket and, optionally, a custom endpoint and
// static credentials (for MinIO or LocalStack).
type S3Config struct {
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Region    string `yaml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"-"`
	SecretKey string `yaml:"secret_key" json:"-"`
}

// S3Sink uploads reports to <Prefix>/<experiment>/<id><ext>.
type S3Sink struct {
	client ObjectPutter
	bucket string
	prefix string
	format Format
}

// NewS3Sink builds a sink over an existing client.
func NewS3Sink(client ObjectPutter, bucket, prefix string, format Format) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix, format: format}
}

// DialS3 loads the default AWS configuration, applies cfg and returns a
// sink backed by a real S3 client.
func DialS3(ctx context.Context, cfg S3Config, format Format) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Sink(client, cfg.Bucket, cfg.Prefix, format), nil
}

func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key for a report.
func (s *S3Sink) Key(r *Report) string {
	group := r.ExperimentID
	if group == "" {
		group = "adhoc"
	}
	return path.Join(s.prefix, group, r.ID+s.format.Ext())
}

func (s *S3Sink) Put(ctx context.Context, r *Report) error {
	if r == nil {
		return ErrNilReport
	}
	var buf bytes.Buffer
	if err := r.Encode(&buf, s.format); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(r)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(s.format.ContentType()),
		Metadata: map[string]string{
			"report-id": r.ID,
			"graph":     r.Graph.Source,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", r.ID, err)
	}
	return nil
}
