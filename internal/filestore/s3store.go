package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	appconfig "github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/media"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// deleteBatch is the S3 limit of keys per DeleteObjects call.
const deleteBatch = 1000

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Presigner signs GET URLs for download and stream links
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store serves the file store operations from an S3-compatible bucket.
// Folders are key prefixes; an empty "name/" object marks a folder created
// with Mkdir.
type S3Store struct {
	api        S3API
	presigner  Presigner
	httpClient *http.Client
	config     *appconfig.S3Config
}

// NewS3Store creates a bucket backed store from configuration
func NewS3Store(cfg *appconfig.S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	customEndpoint := endpoint != "" && endpoint != "auto"
	if !customEndpoint {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = customEndpoint
	})

	return NewS3StoreWithClient(s3Client, s3.NewPresignClient(s3Client), cfg), nil
}

// NewS3StoreWithClient wires an existing S3 client, mainly for tests
func NewS3StoreWithClient(api S3API, presigner Presigner, cfg *appconfig.S3Config) *S3Store {
	return &S3Store{
		api:        api,
		presigner:  presigner,
		httpClient: &http.Client{},
		config:     cfg,
	}
}

// Name returns the bucket URI.
func (s *S3Store) Name() string {
	return "s3://" + s.config.Bucket
}

func (s *S3Store) bucket() *string {
	return aws.String(s.config.Bucket)
}

func dirPrefix(path string) string {
	if path == "" {
		return ""
	}
	return path + "/"
}

// List returns folders (common prefixes) followed by files in key order.
func (s *S3Store) List(ctx context.Context, path string) ([]Entry, error) {
	prefix := dirPrefix(path)
	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket:    s.bucket(),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var dirs, files []Entry
	seen := false
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			seen = true
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				dirs = append(dirs, Entry{Name: name, IsDir: true})
			}
		}
		for _, obj := range page.Contents {
			seen = true
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			size := aws.ToInt64(obj.Size)
			files = append(files, Entry{Name: strings.TrimPrefix(key, prefix), Size: &size})
		}
	}

	if path != "" && !seen {
		return nil, &ServerError{StatusCode: http.StatusNotFound, Body: "Path not found!"}
	}

	return append(dirs, files...), nil
}

// Upload stores r under dir/name. Existing objects are not overwritten.
func (s *S3Store) Upload(ctx context.Context, dir, name string, r io.Reader, size int64) error {
	key := vpath.Child(dir, name)

	exists, err := s.objectExists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return &ServerError{StatusCode: http.StatusConflict, Body: "File already exists!"}
	}

	contentType, _ := media.ContentType(name, nil)
	input := &s3.PutObjectInput{
		Bucket:      s.bucket(),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	logrus.WithFields(logrus.Fields{"key": key, "size": size}).Debug("Uploaded object")
	return nil
}

// Delete removes a single object.
func (s *S3Store) Delete(ctx context.Context, filePath string) error {
	exists, err := s.objectExists(ctx, filePath)
	if err != nil {
		return err
	}
	if !exists {
		return &ServerError{StatusCode: http.StatusNotFound, Body: "File not found"}
	}

	_, err = s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket(),
		Key:    aws.String(filePath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", filePath, err)
	}
	return nil
}

// DeleteDir removes every object under dirPath including its marker.
func (s *S3Store) DeleteDir(ctx context.Context, dirPath string) error {
	if dirPath == "" {
		return &ServerError{StatusCode: http.StatusForbidden, Body: "Forbidden"}
	}

	keys, err := s.keysUnder(ctx, dirPrefix(dirPath))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return &ServerError{StatusCode: http.StatusNotFound, Body: "Directory not found"}
	}
	return s.deleteKeys(ctx, keys)
}

// Mkdir writes an empty folder marker.
func (s *S3Store) Mkdir(ctx context.Context, parent, name string) error {
	marker := dirPrefix(vpath.Child(parent, name))

	keys, err := s.keysUnder(ctx, marker)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return &ServerError{StatusCode: http.StatusConflict, Body: "Directory already exists"}
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        s.bucket(),
		Key:           aws.String(marker),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create folder %s: %w", marker, err)
	}
	return nil
}

// Rename copies path (a file, or every key below a folder) to the new leaf
// name and deletes the originals.
func (s *S3Store) Rename(ctx context.Context, path, newName string) error {
	target := vpath.Child(vpath.Parent(path), newName)

	isFile, err := s.objectExists(ctx, path)
	if err != nil {
		return err
	}

	if isFile {
		exists, err := s.objectExists(ctx, target)
		if err != nil {
			return err
		}
		if exists {
			return &ServerError{StatusCode: http.StatusConflict, Body: "Destination already exists"}
		}
		if err := s.copyKey(ctx, path, target); err != nil {
			return err
		}
		return s.deleteKeys(ctx, []string{path})
	}

	keys, err := s.keysUnder(ctx, dirPrefix(path))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return &ServerError{StatusCode: http.StatusNotFound, Body: "Path not found!"}
	}
	existing, err := s.keysUnder(ctx, dirPrefix(target))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &ServerError{StatusCode: http.StatusConflict, Body: "Destination already exists"}
	}

	oldPrefix, newPrefix := dirPrefix(path), dirPrefix(target)
	for _, key := range keys {
		if err := s.copyKey(ctx, key, newPrefix+strings.TrimPrefix(key, oldPrefix)); err != nil {
			return err
		}
	}
	return s.deleteKeys(ctx, keys)
}

// DownloadURL presigns a GET that asks the browser or client to save the file.
func (s *S3Store) DownloadURL(path string) string {
	disposition := fmt.Sprintf(`attachment; filename="%s"`, escapeQuotes(vpath.Base(path)))
	return s.presign(path, aws.String(disposition))
}

// StreamURL presigns an inline GET.
func (s *S3Store) StreamURL(path string) string {
	return s.presign(path, nil)
}

func (s *S3Store) presign(path string, disposition *string) string {
	req, err := s.presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket:                     s.bucket(),
		Key:                        aws.String(path),
		ResponseContentDisposition: disposition,
	}, s3.WithPresignExpires(s.config.PresignTTL()))
	if err != nil {
		logrus.WithError(err).WithField("key", path).Error("Failed to presign URL")
		return ""
	}
	return req.URL
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *S3Store) Ping(ctx context.Context) error {
	if _, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: s.bucket()}); err != nil {
		return fmt.Errorf("bucket %s is not reachable: %w", s.config.Bucket, err)
	}
	return nil
}

// Open fetches a presigned URL.
func (s *S3Store) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	if rawURL == "" {
		return nil, 0, errors.New("empty url")
	}
	return openURL(ctx, s.httpClient, rawURL)
}

func (s *S3Store) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: s.bucket(),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check %s: %w", key, err)
}

func (s *S3Store) keysUnder(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: s.bucket(),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *S3Store) copyKey(ctx context.Context, from, to string) error {
	_, err := s.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     s.bucket(),
		CopySource: aws.String(vpath.Encode(s.config.Bucket + "/" + from)),
		Key:        aws.String(to),
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", from, to, err)
	}
	return nil
}

func (s *S3Store) deleteKeys(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatch {
		end := start + deleteBatch
		if end > len(keys) {
			end = len(keys)
		}

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := s.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: s.bucket(),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if out != nil && len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("failed to delete %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}
