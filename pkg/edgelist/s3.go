package edgelist

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// S3Scheme prefixes edge lists stored in S3.
const S3Scheme = "s3://"

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds a client from the default AWS credential chain. An
// empty region leaves region resolution to the environment.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "s3" {
		return "", "", graph.ConfigError("parse s3 uri", fmt.Sprintf("%q is not an s3:// uri", uri))
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", graph.ConfigError("parse s3 uri", fmt.Sprintf("%q needs both bucket and key", uri))
	}
	return bucket, key, nil
}

// LoadS3 streams an edge list from S3. Keys ending in SnappySuffix are decompressed.
func LoadS3(ctx context.Context, client ObjectGetter, uri string) (*graph.Graph, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, graph.IOError("get object", uri, err)
	}
	defer out.Body.Close()

	var body io.Reader = out.Body
	if strings.HasSuffix(key, SnappySuffix) {
		body = snappy.NewReader(out.Body)
	}
	return Parse(body, uri)
}
