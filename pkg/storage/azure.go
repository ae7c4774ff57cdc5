package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
	"github.com/aura-webinar/meeting-transcriber/pkg/remote"
)

// audioContentTypes maps upload extensions to MIME types; anything else is sent as audio/ogg.
var audioContentTypes = map[string]string{
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
	".wav": "audio/wav",
}

// AudioContentType returns the MIME type for an uploaded audio filename.
func AudioContentType(filename string) string {
	if ct, ok := audioContentTypes[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "audio/ogg"
}

// ObjectName returns a unique object name: {unix-millis}-{base filename}.
func ObjectName(at time.Time, filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	if filename == "" {
		filename = "audio"
	}
	return fmt.Sprintf("%d-%s", at.UnixMilli(), filename)
}

// AzureBlob uploads objects with a SAS-signed PUT.
type AzureBlob struct {
	signer *SASSigner
	client *http.Client
	logger *zap.Logger
}

// NewAzureBlob creates a Blob Storage uploader.
func NewAzureBlob(signer *SASSigner, client *http.Client, logger *zap.Logger) *AzureBlob {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AzureBlob{signer: signer, client: client, logger: logger}
}

// Upload stores data as a block blob and returns the signed URL to read it back.
func (a *AzureBlob) Upload(ctx context.Context, objectName, contentType string, data []byte) (models.StorageObjectRef, error) {
	ref, err := a.signer.Issue(objectName)
	if err != nil {
		return models.StorageObjectRef{}, fmt.Errorf("issue sas: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, ref.AccessURL, bytes.NewReader(data))
	if err != nil {
		return models.StorageObjectRef{}, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(data)))
	req.Header.Set("x-ms-blob-type", "BlockBlob")

	resp, err := a.client.Do(req)
	if err != nil {
		return models.StorageObjectRef{}, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return models.StorageObjectRef{}, remote.NewStatusError("Upload", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	a.logger.Info("blob uploaded", zap.String("object", objectName), zap.Int("size", len(data)), zap.Time("sas_expiry", ref.Expiry))
	return ref, nil
}
