package receipts

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func testArchive(p putter) *S3 {
	return &S3{
		bucket: "diary",
		client: p,
		presign: func(_ context.Context, in *s3.GetObjectInput) (string, error) {
			return "https://example.test/" + aws.ToString(in.Key), nil
		},
		now:   func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) },
		newID: func() string { return "abc" },
	}
}

func TestKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "receipts/u1/2024/03/09/abc", Key("u1", at, "abc", ""))
	assert.Equal(t, "receipts/local/2024/03/09/abc", Key("", at, "abc", ""))
}

func TestPutUploadsImage(t *testing.T) {
	p := &fakePutter{}
	a := testArchive(p)

	key, err := a.Put(context.Background(), "u1", []byte("jpegdata"), "")
	require.NoError(t, err)
	assert.Equal(t, "receipts/u1/2024/03/09/abc", key)
	assert.Equal(t, "diary", aws.ToString(p.in.Bucket))
	assert.Equal(t, []byte("jpegdata"), p.body)
	assert.Nil(t, p.in.ContentType)
}

func TestPutSurfacesErrors(t *testing.T) {
	a := testArchive(&fakePutter{err: errors.New("denied")})
	_, err := a.Put(context.Background(), "u1", []byte("x"), "image/jpeg")
	assert.ErrorContains(t, err, "denied")

	_, err = a.Put(context.Background(), "u1", nil, "image/jpeg")
	assert.Error(t, err)
}

func TestLink(t *testing.T) {
	a := testArchive(&fakePutter{})
	url, err := a.Link(context.Background(), "receipts/u1/k")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/receipts/u1/k", url)

	_, err = a.Link(context.Background(), "")
	assert.Error(t, err)
}

func TestNewS3Disabled(t *testing.T) {
	_, err := NewS3(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewS3AppliesRegionAndEndpoint(t *testing.T) {
	orig := loadAWSConfig
	t.Cleanup(func() { loadAWSConfig = orig })

	var region string
	loadAWSConfig = func(_ context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		var lo config.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		region = lo.Region
		return aws.Config{Region: lo.Region}, nil
	}

	a, err := NewS3(context.Background(), Config{Bucket: "diary", Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", region)
	assert.Equal(t, "diary", a.bucket)
}

func TestKeyExtension(t *testing.T) {
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "receipts/u1/2024/03/09/abc.jpg", Key("u1", at, "abc", "image/jpeg"))
	assert.Equal(t, "receipts/u1/2024/03/09/abc.png", Key("u1", at, "abc", "image/png"))
}
