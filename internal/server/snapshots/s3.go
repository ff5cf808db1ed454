// Package snapshots exports leaderboard snapshots to S3-compatible object
// storage and hands out time-limited download links for them.
package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	URLTTL       time.Duration
}

// Leaderboard is the ledger read side the exporter needs.
type Leaderboard interface {
	TopJars(n int) []ledger.Standing
	TipJarCount() uint64
}

type standing struct {
	Rank     int    `json:"rank"`
	JarID    uint64 `json:"jar_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Owner    string `json:"owner"`
	TipCount uint64 `json:"tip_count"`
}

// Document is the JSON body written for each snapshot.
type Document struct {
	GeneratedAt time.Time  `json:"generated_at"`
	TotalJars   uint64     `json:"total_jars"`
	Standings   []standing `json:"standings"`
}

type S3Exporter struct {
	config Config
	source Leaderboard
	logger logging.Logger
	now    func() time.Time
}

func NewS3Exporter(cfg Config, source Leaderboard, l logging.Logger) *S3Exporter {
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = 15 * time.Minute
	}
	return &S3Exporter{
		config: cfg,
		source: source,
		logger: l.With("module", "snapshots"),
		now:    time.Now,
	}
}

// StorageKey returns a fresh object key under a date prefix.
func StorageKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("leaderboards/%d/%02d/%02d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (e *S3Exporter) clients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(e.config.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.config.AccessKey,
			e.config.SecretKey,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if e.config.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(e.config.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return client, newS3PresignClient(client), nil
}

// Snapshot builds the document for the top n jars.
func (e *S3Exporter) Snapshot(n int) Document {
	standings := e.source.TopJars(n)
	doc := Document{
		GeneratedAt: e.now().UTC(),
		TotalJars:   e.source.TipJarCount(),
		Standings:   make([]standing, len(standings)),
	}
	for i, s := range standings {
		doc.Standings[i] = standing{
			Rank:     s.Rank,
			JarID:    s.JarID,
			Name:     s.Name,
			Category: string(s.Category),
			Owner:    s.Owner,
			TipCount: s.TipCount,
		}
	}
	return doc
}

// Export uploads a snapshot of the top n jars and returns its key and a
// presigned GET URL valid for the configured TTL.
func (e *S3Exporter) Export(ctx context.Context, n int) (string, string, error) {
	doc := e.Snapshot(n)
	body, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("marshal snapshot: %w", err)
	}

	client, presignClient, err := e.clients(ctx)
	if err != nil {
		return "", "", fmt.Errorf("s3 config: %w", err)
	}

	key := StorageKey(doc.GeneratedAt)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload snapshot: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(e.config.URLTTL))
	if err != nil {
		return "", "", fmt.Errorf("presign snapshot: %w", err)
	}

	e.logger.Info(ctx, "leaderboard exported", "key", key, "jars", len(doc.Standings))
	return key, req.URL, nil
}
