package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fleetrent/internal/common"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// MaxAttachmentSize caps vehicle images and company logos.
const MaxAttachmentSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

const sniffLength = 512

// attachment is an upload whose content type was sniffed from its leading bytes.
// Reading it replays those bytes before the rest of the stream.
type attachment struct {
	body        io.Reader
	contentType string
	ext         string
}

// inspectAttachment checks the declared size, then sniffs the content type from the
// first bytes of file. The declared content type is not trusted.
func inspectAttachment(file io.Reader, size int64, declared string) (*attachment, error) {
	if size <= 0 {
		return nil, common.ValidationError("file", "is empty")
	}
	if size > MaxAttachmentSize {
		return nil, common.ValidationError("file", "exceeds the 5MB limit")
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if n == 0 {
		return nil, common.ValidationError("file", "is empty")
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, common.ValidationError("file", fmt.Sprintf("content is %q, not a supported image (declared %q)", contentType, declared))
	}
	return &attachment{
		body:        io.MultiReader(bytes.NewReader(head), file),
		contentType: contentType,
		ext:         ext,
	}, nil
}

// attachmentKey builds an object key like vehicles/<tenant>/<owner>/<random>.png.
func attachmentKey(kind string, tenantID, ownerID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s%s", kind, tenantID, ownerID, uuid.NewString(), ext)
}

// replaceAttachment uploads a new blob, persists its URL and then drops the previous blob.
// Failing to delete the previous blob is logged and does not fail the call.
func replaceAttachment(ctx context.Context, blobs BlobStore, logger hclog.Logger, key string, file io.Reader, size int64, contentType string,
	previous *string, persist func(url string) error) (string, error) {
	url, err := blobs.Store(ctx, key, file, size, contentType)
	if err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}

	if err := persist(url); err != nil {
		discardBlob(ctx, blobs, logger, url)
		return "", err
	}

	if previous != nil && *previous != "" && *previous != url {
		discardBlob(ctx, blobs, logger, *previous)
	}
	return url, nil
}

func discardBlob(ctx context.Context, blobs BlobStore, logger hclog.Logger, url string) {
	if err := blobs.Delete(ctx, url); err != nil {
		logger.Warn("failed to delete blob", "url", url, "error", err)
	}
}
