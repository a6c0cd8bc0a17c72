package s3_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/storage"
	"github.com/dmitrymomot/storyforge/integration/storage/s3"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutObject(ctx context.Context, in *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3aws.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) HeadObject(ctx context.Context, in *s3aws.HeadObjectInput, _ ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3aws.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteObject(ctx context.Context, in *s3aws.DeleteObjectInput, _ ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3aws.DeleteObjectOutput)
	return out, args.Error(1)
}

func newStorage(t *testing.T, client *mockClient, cfg s3.Config) *s3.Storage {
	t.Helper()

	if cfg.Bucket == "" {
		cfg.Bucket = "audio"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	store, err := s3.New(context.Background(), cfg, s3.WithClient(client))
	require.NoError(t, err)
	return store
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := s3.New(context.Background(), s3.Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestPut(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3aws.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "audio" &&
			*in.Key == "prod/audio/5.mp3" &&
			*in.ContentType == "audio/mpeg" &&
			*in.ContentLength == 4 &&
			string(body) == "mp3!"
	})).Return(&s3aws.PutObjectOutput{}, nil)

	store := newStorage(t, client, s3.Config{KeyPrefix: "/prod/", BaseURL: "https://cdn.example.com"})

	obj, err := store.Put(context.Background(), "audio/5.mp3", bytes.NewReader([]byte("mp3!")), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, storage.Object{
		Key:         "audio/5.mp3",
		Size:        4,
		ContentType: "audio/mpeg",
		URL:         "https://cdn.example.com/prod/audio/5.mp3",
	}, obj)
	client.AssertExpectations(t)
}

func TestPutClassifiesThrottling(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "SlowDown", Message: "reduce request rate"})

	store := newStorage(t, client, s3.Config{})

	_, err := store.Put(context.Background(), "a.mp3", bytes.NewReader([]byte("x")), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrServiceUnavailable)
	assert.True(t, storage.IsTransient(err))
}

func TestPutRejectsBadKey(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	store := newStorage(t, client, s3.Config{})

	_, err := store.Put(context.Background(), "../a.mp3", bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestExists(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3aws.HeadObjectInput) bool {
		return *in.Key == "present.mp3"
	})).Return(&s3aws.HeadObjectOutput{}, nil)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3aws.HeadObjectInput) bool {
		return *in.Key == "missing.mp3"
	})).Return(nil, &types.NotFound{})
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3aws.HeadObjectInput) bool {
		return *in.Key == "forbidden.mp3"
	})).Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

	store := newStorage(t, client, s3.Config{})
	ctx := context.Background()

	ok, err := store.Exists(ctx, "present.mp3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "missing.mp3")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Exists(ctx, "forbidden.mp3")
	assert.ErrorIs(t, err, storage.ErrAccessDenied)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3aws.HeadObjectInput) bool {
		return *in.Key == "a.mp3"
	})).Return(&s3aws.HeadObjectOutput{}, nil)
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3aws.DeleteObjectInput) bool {
		return *in.Key == "a.mp3"
	})).Return(&s3aws.DeleteObjectOutput{}, nil)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3aws.HeadObjectInput) bool {
		return *in.Key == "gone.mp3"
	})).Return(nil, &types.NoSuchKey{})

	store := newStorage(t, client, s3.Config{})
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "a.mp3"))
	assert.ErrorIs(t, store.Delete(ctx, "gone.mp3"), storage.ErrNotFound)
	client.AssertNumberOfCalls(t, "DeleteObject", 1)
}

func TestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  s3.Config
		want string
	}{
		{
			name: "aws virtual host",
			cfg:  s3.Config{Bucket: "b", Region: "eu-west-1"},
			want: "https://b.s3.eu-west-1.amazonaws.com/audio/1.mp3",
		},
		{
			name: "aws path style",
			cfg:  s3.Config{Bucket: "b", Region: "eu-west-1", ForcePathStyle: true},
			want: "https://s3.eu-west-1.amazonaws.com/b/audio/1.mp3",
		},
		{
			name: "minio",
			cfg:  s3.Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://localhost:9000/", ForcePathStyle: true},
			want: "http://localhost:9000/b/audio/1.mp3",
		},
		{
			name: "spaces virtual host",
			cfg:  s3.Config{Bucket: "b", Region: "nyc3", Endpoint: "https://nyc3.digitaloceanspaces.com"},
			want: "https://b.nyc3.digitaloceanspaces.com/audio/1.mp3",
		},
		{
			name: "cdn base url",
			cfg:  s3.Config{Bucket: "b", Region: "us-east-1", BaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/audio/1.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newStorage(t, &mockClient{}, tt.cfg)
			assert.Equal(t, tt.want, store.URL("/audio/1.mp3"))
		})
	}
}
