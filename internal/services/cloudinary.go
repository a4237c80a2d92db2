package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Uploader is the media-storage collaborator: store a buffer, get back a URL.
type Uploader interface {
	UploadBuffer(ctx context.Context, data []byte, folder, mimetype string) (string, error)
}

// NopUploader rejects every upload. Used when no media credentials are
// configured; listing creation still works, the failed items are skipped.
type NopUploader struct{}

func (NopUploader) UploadBuffer(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("media uploads are not configured")
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// isDocument reports whether the mimetype needs the "raw" resource type
// (PDF and word-processor rules files; everything else auto-detects).
func isDocument(mimetype string) bool {
	return strings.Contains(mimetype, "pdf") ||
		strings.Contains(mimetype, "msword") ||
		strings.Contains(mimetype, "officedocument")
}

func (s *CloudinaryService) UploadBuffer(ctx context.Context, data []byte, folder, mimetype string) (string, error) {
	resourceType := "auto"
	if isDocument(mimetype) {
		resourceType = "raw"
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     uuid.NewString(),
		Folder:       folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return result.SecureURL, nil
}
