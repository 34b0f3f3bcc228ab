package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 is the remote object-storage tier. Artifacts are stored under
// <prefix>/artifacts/<fingerprint>.cbor with a sibling metadata object.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates a remote tier using the ambient AWS configuration.
func NewS3(ctx context.Context, bucket, prefix string) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load aws config: %w", err)
	}
	return NewS3WithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3WithClient creates a remote tier with a preconfigured client.
func NewS3WithClient(client *s3.Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3) Name() string {
	return "cloud"
}

func (s *S3) artifactKey(fingerprint string) string {
	return path.Join(s.prefix, "artifacts", fingerprint+artifactExt)
}

func (s *S3) metadataKey(fingerprint string) string {
	return path.Join(s.prefix, "artifacts", fingerprint+metadataExt)
}

func (s *S3) Has(ctx context.Context, fingerprint string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.artifactKey(fingerprint)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("store: head artifact: %w", err)
	}
	return true, nil
}

func (s *S3) Get(ctx context.Context, fingerprint string) (*Artifact, error) {
	value, err := s.getObject(ctx, s.artifactKey(fingerprint))
	if err != nil {
		return nil, err
	}
	metaBytes, err := s.getObject(ctx, s.metadataKey(fingerprint))
	if err != nil {
		return nil, err
	}
	meta, err := decodeMetadata(metaBytes)
	if err != nil {
		return nil, err
	}
	return &Artifact{Meta: meta, Value: value}, nil
}

func (s *S3) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get object %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("store: read object %s: %w", key, err)
	}
	return data, nil
}

func (s *S3) Put(ctx context.Context, artifact *Artifact) error {
	metaBytes, err := encodeMetadata(artifact.Meta)
	if err != nil {
		return err
	}
	fingerprint := artifact.Meta.Fingerprint
	if err := s.putObject(ctx, s.artifactKey(fingerprint), artifact.Value); err != nil {
		return err
	}
	return s.putObject(ctx, s.metadataKey(fingerprint), metaBytes)
}

func (s *S3) putObject(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("store: put object %s: %w", key, err)
	}
	return nil
}

func (s *S3) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(path.Join(s.prefix, "artifacts") + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("store: list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, metadataExt) {
				continue
			}
			metaBytes, err := s.getObject(ctx, key)
			if err != nil {
				return nil, err
			}
			meta, err := decodeMetadata(metaBytes)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{
				Meta:        meta,
				Tier:        s.Name(),
				ArtifactURL: fmt.Sprintf("s3://%s/%s", s.bucket, s.artifactKey(meta.Fingerprint)),
			})
		}
	}
	return entries, nil
}
