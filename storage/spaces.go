package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/pkg/errors"
)

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

// SpacesClient archives transcripts in an S3-compatible bucket.
type SpacesClient struct {
	client *s3.Client
	bucket string
}

type archivedTranscript struct {
	Transcript *transcript.Transcript `json:"transcript"`
	ArchivedAt time.Time              `json:"archived_at"`
}

func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*SpacesClient, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &SpacesClient{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(videoID string) string {
	return fmt.Sprintf("transcripts/%s.json", videoID)
}

func (s *SpacesClient) SaveTranscript(ctx context.Context, videoID string, t *transcript.Transcript) error {
	if videoID == "" || t == nil {
		return errors.New("video ID and transcript are required")
	}

	data, err := json.Marshal(archivedTranscript{Transcript: t, ArchivedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "failed to marshal transcript")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(videoID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to save %s to Spaces", videoID)
	}
	return nil
}

func (s *SpacesClient) GetTranscript(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(videoID)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s from Spaces", videoID)
	}
	defer result.Body.Close()

	var data archivedTranscript
	if err := json.NewDecoder(result.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "failed to decode archived transcript")
	}
	if data.Transcript == nil {
		return nil, errors.Errorf("archived object for %s has no transcript", videoID)
	}
	return data.Transcript, nil
}
