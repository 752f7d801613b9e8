package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/rs/zerolog"
)

// BlobService archives uploaded source files and CSV exports in Azure Blob Storage.
type BlobService struct {
	client    *azblob.Client
	container string
	log       zerolog.Logger
}

// NewBlobService creates a BlobService writing to container.
func NewBlobService(blobURL, container string, log zerolog.Logger) (*BlobService, error) {
	if blobURL == "" {
		return nil, fmt.Errorf("blob service URL is required")
	}
	log = log.With().Str("service", "blob").Logger()

	log.Info().Str("blob_url", blobURL).Msg("initializing blob service")
	var client *azblob.Client

	// Check if running locally with Azurite (http endpoint)
	if isLocal(blobURL) {
		log.Info().Msg("using Azurite shared key credentials for blob service")
		name, key := getAzuriteCredentials()
		cred, err := azblob.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential(log)
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	log.Info().Str("container", container).Msg("blob service initialized successfully")
	return &BlobService{client: client, container: container, log: log}, nil
}

// Upload stores data under blobName.
func (s *BlobService) Upload(ctx context.Context, blobName string, data []byte) error {
	s.log.Info().Str("container", s.container).Str("blob_name", blobName).Int("size_bytes", len(data)).Msg("uploading blob")

	// Create container if not exists (mostly for dev)
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		s.log.Warn().Err(err).Str("container", s.container).Msg("failed to create container (may already exist)")
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, nil); err != nil {
		s.log.Error().Err(err).Str("blob_name", blobName).Msg("failed to upload blob")
		return fmt.Errorf("failed to upload blob %s/%s: %w", s.container, blobName, err)
	}
	s.log.Info().Str("blob_name", blobName).Msg("successfully uploaded blob")
	return nil
}

// Download returns the content of blobName.
func (s *BlobService) Download(ctx context.Context, blobName string) ([]byte, error) {
	s.log.Info().Str("container", s.container).Str("blob_name", blobName).Msg("downloading blob")
	resp, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		s.log.Error().Err(err).Str("blob_name", blobName).Msg("failed to download blob")
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", s.container, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}

	s.log.Info().Str("blob_name", blobName).Int("size_bytes", len(data)).Msg("successfully downloaded blob")
	return data, nil
}

// UploadBlobName names the archived copy of an uploaded file.
func UploadBlobName(session, filename string, now time.Time) string {
	return path.Join(session, "uploads", now.UTC().Format("20060102T150405Z")+"-"+path.Base(filename))
}

// UploadFilename recovers the original file name from a blob named by
// UploadBlobName for session. It reports false for blobs outside the
// session's uploads.
func UploadFilename(session, blobName string) (string, bool) {
	rest, ok := strings.CutPrefix(blobName, path.Join(session, "uploads")+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	stamp, name, ok := strings.Cut(rest, "-")
	if !ok || name == "" {
		return "", false
	}
	if _, err := time.Parse("20060102T150405Z", stamp); err != nil {
		return "", false
	}
	return name, true
}

// ExportBlobName names an archived CSV export.
func ExportBlobName(session, filename string) string {
	return path.Join(session, "exports", path.Base(filename))
}
