package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iceweasel13/solana-bomber/bomber/config"
)

// ObjectPutter is the part of the S3 client the archiver uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SnapshotArchiver uploads economy snapshots as JSON objects to an S3
// compatible bucket (DigitalOcean Spaces by default).
type SnapshotArchiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewSnapshotArchiver(key, secret, region, endpoint, bucket, prefix string) (*SnapshotArchiver, error) {
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", region)
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: endpoint}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load snapshot storage config: %w", err)
	}

	return NewSnapshotArchiverWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewSnapshotArchiverWithClient(client ObjectPutter, bucket, prefix string) *SnapshotArchiver {
	return &SnapshotArchiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ObjectKey is prefix/YYYY/MM/DD/<unix>.json.
func (a *SnapshotArchiver) ObjectKey(at time.Time) string {
	at = at.UTC()
	key := fmt.Sprintf("%s/%d.json", at.Format("2006/01/02"), at.Unix())
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

// Archive stores v as JSON under the key for at and returns the key.
func (a *SnapshotArchiver) Archive(ctx context.Context, at time.Time, v any) (string, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.SnapshotUploadTimeout)
	defer cancel()

	key := a.ObjectKey(at)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}
	return key, nil
}
