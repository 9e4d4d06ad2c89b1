package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/config"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

// Test seams for the S3 client chain.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// AttachmentService stores attachment metadata in the database and hands
// clients presigned URLs for the content itself. Authorization follows
// the attachment's task and therefore the parent project's owner.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tasks       *TaskService
	logger      logging.Logger
	config      *config.Config
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, tasks *TaskService, l logging.Logger, cfg *config.Config) *AttachmentService {
	return &AttachmentService{
		db:          db,
		repomanager: m,
		tasks:       tasks,
		logger:      l.With("module", "attachment_service"),
		config:      cfg,
	}
}

// UploadGrant is returned to the client after an upload request: the
// pending metadata row plus a temporary URL to PUT the content to.
type UploadGrant struct {
	Attachment *models.Attachment `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
}

// randomStorageKey spreads objects by date to keep bucket listings usable.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("tasks/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *AttachmentService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *AttachmentService) presignPut(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func (s *AttachmentService) presignGet(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// RequestUpload authorizes against the task, creates a pending metadata
// row, and returns it together with a presigned PUT URL.
func (s *AttachmentService) RequestUpload(ctx context.Context, identity *models.User, taskID, filename string) (*UploadGrant, error) {
	task, err := s.tasks.Get(ctx, identity, taskID)
	if err != nil {
		return nil, err
	}

	key, url, err := s.presignPut(ctx)
	if err != nil {
		s.logger.Error(ctx, "presign put failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	attachment := &models.Attachment{
		TaskID:       task.ID,
		FileName:     filename,
		StorageKey:   key,
		UploadStatus: models.UploadStatusPending,
	}

	attachment, err = s.repomanager.Attachments(s.db).Create(ctx, attachment)
	if err != nil {
		s.logger.Error(ctx, "attachment creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return &UploadGrant{Attachment: attachment, UploadURL: url}, nil
}

// authorize resolves the attachment and applies the task's access scope.
func (s *AttachmentService) authorize(ctx context.Context, identity *models.User, id string) (*models.Attachment, error) {
	attachment, err := s.repomanager.Attachments(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "attachment lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if _, err := s.tasks.Get(ctx, identity, attachment.TaskID); err != nil {
		return nil, err
	}

	return attachment, nil
}

// ConfirmUpload flips a pending attachment to uploaded after the client
// has PUT the content.
func (s *AttachmentService) ConfirmUpload(ctx context.Context, identity *models.User, id string) error {
	attachment, err := s.authorize(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Attachments(s.db).MarkUploaded(ctx, attachment.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "attachment update failed", "error", err.Error())
		return common.ErrorInternal
	}

	return nil
}

// DownloadURL returns a presigned GET URL for an uploaded attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, identity *models.User, id string) (string, error) {
	attachment, err := s.authorize(ctx, identity, id)
	if err != nil {
		return "", err
	}

	if attachment.UploadStatus != models.UploadStatusUploaded {
		return "", common.ErrorNotFound
	}

	url, err := s.presignGet(ctx, attachment.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "presign get failed", "error", err.Error())
		return "", common.ErrorInternal
	}

	return url, nil
}

// ListByTask returns the attachment metadata of one task.
func (s *AttachmentService) ListByTask(ctx context.Context, identity *models.User, taskID string) ([]*models.Attachment, error) {
	task, err := s.tasks.Get(ctx, identity, taskID)
	if err != nil {
		return nil, err
	}

	result, err := s.repomanager.Attachments(s.db).ListByTask(ctx, task.ID)
	if err != nil {
		s.logger.Error(ctx, "attachment list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return result, nil
}

// Delete removes attachment metadata. The object itself is left to bucket
// lifecycle rules.
func (s *AttachmentService) Delete(ctx context.Context, identity *models.User, id string) error {
	attachment, err := s.authorize(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Attachments(s.db).Delete(ctx, attachment.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "attachment delete failed", "error", err.Error())
		return common.ErrorInternal
	}

	return nil
}
