// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/rights-backend/internal/config"
)

// LocalUploadDir holds documents when S3 is not configured.
const LocalUploadDir = "uploads"

// blobStore is where validated document bytes end up.
type blobStore interface {
	put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	remove(ctx context.Context, key string) error
	// signedURL returns a download link for key; expiring is false when the
	// stored URL is returned as-is.
	signedURL(key, storedURL string, ttl time.Duration) (url string, expiring bool, err error)
	fields() logrus.Fields
}

// StorageService validates uploads and hands them to S3 or the local disk.
type StorageService struct {
	store blobStore
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

// ContractDocumentOptions limits contract attachments to office, PDF and scan files.
var ContractDocumentOptions = UploadOptions{
	Folder:       "contracts",
	MaxSize:      25 * 1024 * 1024, // 25MB
	AllowedTypes: []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt", ".png", ".jpg", ".jpeg"},
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		return &StorageService{store: &localStore{
			dir:     LocalUploadDir,
			baseURL: fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port),
		}}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{store: &s3Store{
		client: s3.New(sess),
		bucket: cfg.AWS.S3Bucket,
		region: cfg.AWS.Region,
		cdnURL: strings.TrimRight(cfg.AWS.CloudFrontURL, "/"),
	}}, nil
}

func (s *StorageService) UsesS3() bool {
	_, ok := s.store.(*s3Store)
	return ok
}

func (s *StorageService) Upload(ctx context.Context, file io.Reader, fileName string, size int64, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && size > options.MaxSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", size, options.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(options.AllowedTypes) > 0 && !slices.Contains(options.AllowedTypes, ext) {
		return nil, fmt.Errorf("file type %q is not allowed", ext)
	}

	// The declared size comes from the client; read one byte past the limit
	// to catch bodies that understate it.
	if options.MaxSize > 0 {
		file = io.LimitReader(file, options.MaxSize+1)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if options.MaxSize > 0 && int64(len(data)) > options.MaxSize {
		return nil, fmt.Errorf("file exceeds maximum allowed size %d bytes", options.MaxSize)
	}

	contentType := http.DetectContentType(data)
	key := objectKey(fileName, options.Folder, time.Now())

	url, err := s.store.put(ctx, key, contentType, data)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:      url,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	return s.store.remove(ctx, key)
}

// DownloadURL returns a link for the stored object and, for presigned S3
// links, when it stops working.
func (s *StorageService) DownloadURL(key, storedURL string, ttl time.Duration) (string, *time.Time, error) {
	url, expiring, err := s.store.signedURL(key, storedURL, ttl)
	if err != nil {
		return "", nil, err
	}
	if !expiring {
		return url, nil, nil
	}
	expires := time.Now().Add(ttl)
	return url, &expires, nil
}

// objectKey is folder/YYYYMMDD_<8 hex>.<ext>; the original name is kept on
// the document row, not in the key.
func objectKey(originalName, folder string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%s_%s%s", now.Format("20060102"), uuid.NewString()[:8], ext)
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

type s3Store struct {
	client *s3.S3
	bucket string
	region string
	cdnURL string
}

func (s *s3Store) put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *s3Store) remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *s3Store) signedURL(key, _ string, ttl time.Duration) (string, bool, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", false, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, true, nil
}

// objectURL is the public location recorded on the document row.
func (s *s3Store) objectURL(key string) string {
	if s.cdnURL != "" {
		return s.cdnURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *s3Store) fields() logrus.Fields {
	return logrus.Fields{"backend": "s3", "bucket": s.bucket, "region": s.region}
}

type localStore struct {
	dir     string
	baseURL string
}

func (l *localStore) path(key string) string {
	return filepath.Join(l.dir, filepath.FromSlash(key))
}

func (l *localStore) put(_ context.Context, key, _ string, data []byte) (string, error) {
	path := l.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return l.baseURL + "/" + key, nil
}

func (l *localStore) remove(_ context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *localStore) signedURL(_, storedURL string, _ time.Duration) (string, bool, error) {
	return storedURL, false, nil
}

func (l *localStore) fields() logrus.Fields {
	return logrus.Fields{"backend": "local", "dir": l.dir}
}

func logStorageMode(s *StorageService) {
	logrus.WithFields(s.store.fields()).Info("Contract document storage ready")
}
