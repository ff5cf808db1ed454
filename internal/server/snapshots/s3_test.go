package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct{ standings []ledger.Standing }

func (f fakeBoard) TopJars(n int) []ledger.Standing {
	if n > len(f.standings) {
		n = len(f.standings)
	}
	return f.standings[:n]
}

func (f fakeBoard) TipJarCount() uint64 { return 5 }

var board = fakeBoard{standings: []ledger.Standing{
	{Rank: 1, JarID: 3, Name: "three", Category: ledger.CategoryCharity, Owner: "carol", TipCount: 9},
	{Rank: 2, JarID: 1, Name: "one", Category: ledger.CategoryOther, Owner: "alice", TipCount: 4},
}}

func testConfig() Config {
	return Config{
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "snapshots",
		URLTTL:       10 * time.Minute,
	}
}

func stubPut(t *testing.T) *s3.PutObjectInput {
	t.Helper()
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	captured := &s3.PutObjectInput{}
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		*captured = *in
		return &s3.PutObjectOutput{}, nil
	}
	return captured
}

func TestStorageKey(t *testing.T) {
	key := StorageKey(time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^leaderboards/2026/03/07/[0-9a-f-]{36}\.json$`), key)
	assert.NotEqual(t, key, StorageKey(time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)))
}

func TestSnapshot(t *testing.T) {
	e := NewS3Exporter(testConfig(), board, logging.NewNop())
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	doc := e.Snapshot(1)
	assert.Equal(t, uint64(5), doc.TotalJars)
	require.Len(t, doc.Standings, 1)
	assert.Equal(t, standing{Rank: 1, JarID: 3, Name: "three", Category: "charity", Owner: "carol", TipCount: 9}, doc.Standings[0])
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), doc.GeneratedAt)
}

func TestExport_UploadsAndPresigns(t *testing.T) {
	put := stubPut(t)
	e := NewS3Exporter(testConfig(), board, logging.NewNop())

	key, url, err := e.Export(context.Background(), 10)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "leaderboards/"))
	assert.Equal(t, "snapshots", aws.ToString(put.Bucket))
	assert.Equal(t, key, aws.ToString(put.Key))
	assert.Equal(t, "application/json", aws.ToString(put.ContentType))

	body, err := io.ReadAll(put.Body)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Len(t, doc.Standings, 2)
	assert.NotContains(t, string(body), "handle")

	assert.Contains(t, url, "http://127.0.0.1:9000/snapshots/"+key)
	assert.Contains(t, url, "X-Amz-Expires=600")
}

func TestExport_ClientOptions(t *testing.T) {
	stubPut(t)
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return origLoad(ctx, optFns...)
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return origNew(cfg, optFns...)
	}

	_, _, err := NewS3Exporter(testConfig(), board, logging.NewNop()).Export(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestExport_Errors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		orig := loadDefaultAWSConfig
		t.Cleanup(func() { loadDefaultAWSConfig = orig })
		loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no config")
		}

		_, _, err := NewS3Exporter(testConfig(), board, logging.NewNop()).Export(context.Background(), 1)
		assert.ErrorContains(t, err, "s3 config")
	})

	t.Run("upload", func(t *testing.T) {
		orig := putObject
		t.Cleanup(func() { putObject = orig })
		putObject = func(*s3.Client, context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("bucket missing")
		}

		_, _, err := NewS3Exporter(testConfig(), board, logging.NewNop()).Export(context.Background(), 1)
		assert.ErrorContains(t, err, "upload snapshot")
	})

	t.Run("presign", func(t *testing.T) {
		stubPut(t)
		orig := presignGetObject
		t.Cleanup(func() { presignGetObject = orig })
		presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			return nil, errors.New("clock skew")
		}

		_, _, err := NewS3Exporter(testConfig(), board, logging.NewNop()).Export(context.Background(), 1)
		assert.ErrorContains(t, err, "presign snapshot")
	})
}

func TestNewS3Exporter_DefaultTTL(t *testing.T) {
	e := NewS3Exporter(Config{}, board, logging.NewNop())
	assert.Equal(t, 15*time.Minute, e.config.URLTTL)
}
