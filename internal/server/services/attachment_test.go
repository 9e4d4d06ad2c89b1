package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

// stubS3 replaces the S3 client chain for the duration of a test so no
// network traffic happens.
func stubS3(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewClient := newS3ClientFromConfig
	origNewPresign := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewClient
		newS3PresignClient = origNewPresign
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return nil
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/get/" + *in.Key}, nil
	}
}

type attachmentFixture struct {
	attachments *AttachmentService
	owner       *models.User
	other       *models.User
	task        *models.Task
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	stubS3(t)

	m := repomanager.NewInMemoryRepositoryManager()
	logger := newTestLogger()
	taskService := NewTaskService(nil, m, logger)
	projectService := NewProjectService(nil, m, logger)

	f := &attachmentFixture{
		attachments: NewAttachmentService(nil, m, taskService, logger, newTestConfig()),
		owner:       addUser(t, m, "owner@example.com", models.RoleUsuario),
		other:       addUser(t, m, "other@example.com", models.RoleUsuario),
	}

	ctx := context.Background()
	project, err := projectService.Create(ctx, f.owner, &ProjectInput{Title: "Website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, err := taskService.Create(ctx, f.owner, &TaskInput{Title: "Wireframes", ProjectID: project.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.task = task
	return f
}

func TestRequestUpload(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	grant, err := f.attachments.RequestUpload(ctx, f.owner, f.task.ID, "mockup.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if grant.UploadURL == "" {
		t.Error("expected a presigned upload URL")
	}
	if grant.Attachment.FileName != "mockup.png" {
		t.Errorf("expected mockup.png, got %s", grant.Attachment.FileName)
	}
	if grant.Attachment.UploadStatus != models.UploadStatusPending {
		t.Errorf("expected pending, got %s", grant.Attachment.UploadStatus)
	}
}

func TestRequestUpload_AccessFollowsTask(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	_, err := f.attachments.RequestUpload(ctx, f.other, f.task.ID, "mockup.png")
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden, got %v", err)
	}

	_, err = f.attachments.RequestUpload(ctx, f.owner, "no-such-task", "mockup.png")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestConfirmAndDownload(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	grant, err := f.attachments.RequestUpload(ctx, f.owner, f.task.ID, "mockup.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := grant.Attachment.ID

	// downloads are refused until the upload is confirmed
	if _, err := f.attachments.DownloadURL(ctx, f.owner, id); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound before confirmation, got %v", err)
	}

	if err := f.attachments.ConfirmUpload(ctx, f.owner, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url, err := f.attachments.DownloadURL(ctx, f.owner, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Error("expected a presigned download URL")
	}

	if _, err := f.attachments.DownloadURL(ctx, f.other, id); !errors.Is(err, common.ErrorForbidden) {
		t.Errorf("non-owner: expected ErrorForbidden, got %v", err)
	}
}

func TestAttachmentListAndDelete(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()

	grant, err := f.attachments.RequestUpload(ctx, f.owner, f.task.ID, "mockup.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.attachments.ListByTask(ctx, f.owner, f.task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(result))
	}

	if err := f.attachments.Delete(ctx, f.other, grant.Attachment.ID); !errors.Is(err, common.ErrorForbidden) {
		t.Errorf("non-owner delete: expected ErrorForbidden, got %v", err)
	}
	if err := f.attachments.Delete(ctx, f.owner, grant.Attachment.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err = f.attachments.ListByTask(ctx, f.owner, f.task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no attachments after delete, got %d", len(result))
	}
}
