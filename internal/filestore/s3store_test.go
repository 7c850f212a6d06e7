package filestore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appconfig "github.com/HaiFongPan/minas-cli/internal/config"
)

// MockS3Client 用于模拟 S3 客户端
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	// 读取 Body 以模拟真实上传
	if params.Body != nil {
		io.Copy(io.Discard, params.Body)
	}
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.CopyObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.DeleteObjectsOutput), args.Error(1)
}

func (m *MockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

// MockPresigner 用于模拟预签名客户端
type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*v4.PresignedHTTPRequest), args.Error(1)
}

func newTestS3Store() (*S3Store, *MockS3Client, *MockPresigner) {
	api := &MockS3Client{}
	presigner := &MockPresigner{}
	cfg := &appconfig.S3Config{Bucket: "nas-bucket", PresignExpiry: 60}
	return NewS3StoreWithClient(api, presigner, cfg), api, presigner
}

func prefixIs(prefix string) interface{} {
	return mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == prefix
	})
}

func keyIs(key string) interface{} {
	return mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == key
	})
}

func TestS3StoreList(t *testing.T) {
	store, api, _ := newTestS3Store()

	api.On("ListObjectsV2", mock.Anything, prefixIs("docs/")).Return(&s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("docs/sub/")}},
		Contents: []types.Object{
			{Key: aws.String("docs/"), Size: aws.Int64(0)},
			{Key: aws.String("docs/a.txt"), Size: aws.Int64(12)},
		},
	}, nil)

	entries, err := store.List(context.Background(), "docs")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{Name: "sub", IsDir: true}, entries[0])
	assert.Equal(t, "a.txt", entries[1].Name)
	assert.False(t, entries[1].IsDir)
	assert.Equal(t, int64(12), *entries[1].Size)

	api.AssertExpectations(t)
}

func TestS3StoreListMissing(t *testing.T) {
	store, api, _ := newTestS3Store()
	api.On("ListObjectsV2", mock.Anything, prefixIs("ghost/")).Return(&s3.ListObjectsV2Output{}, nil)

	_, err := store.List(context.Background(), "ghost")
	assert.True(t, IsNotFound(err))
}

func TestS3StoreUpload(t *testing.T) {
	store, api, _ := newTestS3Store()

	api.On("HeadObject", mock.Anything, keyIs("docs/a.png")).Return((*s3.HeadObjectOutput)(nil), &types.NotFound{})
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "docs/a.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(&s3.PutObjectOutput{}, nil)

	err := store.Upload(context.Background(), "docs", "a.png", strings.NewReader("png"), 3)
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestS3StoreUploadExisting(t *testing.T) {
	store, api, _ := newTestS3Store()
	api.On("HeadObject", mock.Anything, keyIs("a.txt")).Return(&s3.HeadObjectOutput{}, nil)

	err := store.Upload(context.Background(), "", "a.txt", strings.NewReader("x"), 1)
	assert.True(t, IsConflict(err))
	api.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestS3StoreDeleteDir(t *testing.T) {
	store, api, _ := newTestS3Store()

	api.On("ListObjectsV2", mock.Anything, prefixIs("docs/")).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("docs/")},
			{Key: aws.String("docs/a.txt")},
			{Key: aws.String("docs/sub/b.txt")},
		},
	}, nil)
	api.On("DeleteObjects", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
		return len(in.Delete.Objects) == 3
	})).Return(&s3.DeleteObjectsOutput{}, nil)

	require.NoError(t, store.DeleteDir(context.Background(), "docs"))
	api.AssertExpectations(t)
}

func TestS3StoreMkdir(t *testing.T) {
	store, api, _ := newTestS3Store()

	api.On("ListObjectsV2", mock.Anything, prefixIs("docs/new/")).Return(&s3.ListObjectsV2Output{}, nil)
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "docs/new/" && aws.ToInt64(in.ContentLength) == 0
	})).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, store.Mkdir(context.Background(), "docs", "new"))
	api.AssertExpectations(t)
}

func TestS3StoreMkdirExisting(t *testing.T) {
	store, api, _ := newTestS3Store()
	api.On("ListObjectsV2", mock.Anything, prefixIs("docs/")).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{{Key: aws.String("docs/")}},
	}, nil)

	err := store.Mkdir(context.Background(), "", "docs")
	assert.True(t, IsConflict(err))
}

func TestS3StoreRenameFile(t *testing.T) {
	store, api, _ := newTestS3Store()

	api.On("HeadObject", mock.Anything, keyIs("docs/a.txt")).Return(&s3.HeadObjectOutput{}, nil)
	api.On("HeadObject", mock.Anything, keyIs("docs/b.txt")).Return((*s3.HeadObjectOutput)(nil), &types.NotFound{})
	api.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *s3.CopyObjectInput) bool {
		return aws.ToString(in.CopySource) == "nas-bucket/docs/a.txt" && aws.ToString(in.Key) == "docs/b.txt"
	})).Return(&s3.CopyObjectOutput{}, nil)
	api.On("DeleteObjects", mock.Anything, mock.Anything).Return(&s3.DeleteObjectsOutput{}, nil)

	require.NoError(t, store.Rename(context.Background(), "docs/a.txt", "b.txt"))
	api.AssertExpectations(t)
}

func TestS3StoreRenameFolder(t *testing.T) {
	store, api, _ := newTestS3Store()

	api.On("HeadObject", mock.Anything, keyIs("docs")).Return((*s3.HeadObjectOutput)(nil), &types.NotFound{})
	api.On("ListObjectsV2", mock.Anything, prefixIs("docs/")).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{{Key: aws.String("docs/")}, {Key: aws.String("docs/a b.txt")}},
	}, nil)
	api.On("ListObjectsV2", mock.Anything, prefixIs("papers/")).Return(&s3.ListObjectsV2Output{}, nil)
	api.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *s3.CopyObjectInput) bool {
		return aws.ToString(in.Key) == "papers/"
	})).Return(&s3.CopyObjectOutput{}, nil).Once()
	api.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *s3.CopyObjectInput) bool {
		return aws.ToString(in.Key) == "papers/a b.txt" && aws.ToString(in.CopySource) == "nas-bucket/docs/a%20b.txt"
	})).Return(&s3.CopyObjectOutput{}, nil).Once()
	api.On("DeleteObjects", mock.Anything, mock.Anything).Return(&s3.DeleteObjectsOutput{}, nil)

	require.NoError(t, store.Rename(context.Background(), "docs", "papers"))
	api.AssertExpectations(t)
}

func TestS3StoreURLs(t *testing.T) {
	store, _, presigner := newTestS3Store()

	presigner.On("PresignGetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return in.ResponseContentDisposition != nil
	})).Return(&v4.PresignedHTTPRequest{URL: "https://signed/download"}, nil)
	presigner.On("PresignGetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return in.ResponseContentDisposition == nil
	})).Return(&v4.PresignedHTTPRequest{URL: "https://signed/stream"}, nil)

	assert.Equal(t, "https://signed/download", store.DownloadURL("docs/a.txt"))
	assert.Equal(t, "https://signed/stream", store.StreamURL("docs/a.txt"))
	assert.Equal(t, "s3://nas-bucket", store.Name())
}
