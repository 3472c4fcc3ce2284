package remote

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/vbonduro/estatedocs/internal/domain"
)

// ErrAttachment marks a contract file that could not be read or is empty.
var ErrAttachment = errors.New("unreadable contract file")

// Attachment is a contract document awaiting upload.
type Attachment struct {
	FileName string
	MimeType string
	Content  io.Reader
}

// encodeAttachment reads the whole attachment and base64-encodes it into an
// upload request. The MIME type is sniffed when the caller supplied none.
func encodeAttachment(locatorID string, contractType domain.ContractType, file Attachment) (UploadContractRequest, error) {
	if file.Content == nil {
		return UploadContractRequest{}, fmt.Errorf("%w: %q has no content", ErrAttachment, file.FileName)
	}
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return UploadContractRequest{}, fmt.Errorf("%w: %v", ErrAttachment, err)
	}
	if len(data) == 0 {
		return UploadContractRequest{}, fmt.Errorf("%w: %q is empty", ErrAttachment, file.FileName)
	}

	mimeType := file.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return UploadContractRequest{
		LocatorID:    locatorID,
		ContractType: contractType,
		FileName:     filepath.Base(file.FileName),
		MimeType:     mimeType,
		FileData:     base64.StdEncoding.EncodeToString(data),
	}, nil
}
