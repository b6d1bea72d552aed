// Package export hands the current document to a download service.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/DanielSallander/Pdf-Viewer/pkg/codec"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/viewstate"
)

// Encoding and format tags of an export request.
const (
	EncodingBase64 = "base64"
	FormatPDF      = "pdf"
)

// Request asks the host to save a document.
type Request struct {
	// Content is the document as base64.
	Content  string `json:"content"`
	FileName string `json:"fileName"`
	Encoding string `json:"encoding"`
	Format   string `json:"format"`
}

// Result describes where a download ended up.
type Result struct {
	Location string `json:"location"`
	SHA256   string `json:"sha256"`
	Size     int    `json:"size"`
}

// DownloadService delivers export requests.
type DownloadService interface {
	Download(ctx context.Context, req Request) (Result, error)
}

// SuggestedFileName appends the pdf extension to name.
func SuggestedFileName(name string) string {
	return name + ".pdf"
}

// NewRequest builds the request for doc. Documents without bytes, such as
// the placeholder kept after a warning, cannot be exported.
func NewRequest(doc *viewstate.DocumentRef) (Request, error) {
	if doc == nil || len(doc.Bytes) == 0 {
		return Request{}, werrors.AttachSuggestions(werrors.EngineError(werrors.ErrNoDocument,
			"no document is loaded"))
	}
	return Request{
		Content:  codec.Encode(doc.Bytes),
		FileName: SuggestedFileName(doc.FileName),
		Encoding: EncodingBase64,
		Format:   FormatPDF,
	}, nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// decode validates the request tags and returns the document bytes.
func decode(req Request) ([]byte, error) {
	if req.Encoding != EncodingBase64 || req.Format != FormatPDF {
		return nil, werrors.ValidationErrorf(werrors.ErrExportFailed,
			"unsupported export %s/%s", req.Format, req.Encoding)
	}
	data, err := codec.Decode(req.Content)
	if err != nil {
		return nil, werrors.WrapValidation(err, werrors.ErrExportFailed, "export content is not valid base64")
	}
	return data, nil
}

// -----------------------------------------------------------------------------
// File Service
// -----------------------------------------------------------------------------

// FileService saves exports into a directory.
type FileService struct {
	Dir string
}

// Download writes the decoded document to Dir. The file is written to a
// temporary name first and renamed into place.
func (s *FileService) Download(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	data, err := decode(req)
	if err != nil {
		return Result{}, err
	}

	name := filepath.Base(strings.TrimSpace(req.FileName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return Result{}, werrors.ValidationError(werrors.ErrExportFailed, "export file name is empty")
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return Result{}, werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot create export directory").
			WithContext("path", s.Dir)
	}

	target := filepath.Join(s.Dir, name)
	tmp, err := os.CreateTemp(s.Dir, ".export-*")
	if err != nil {
		return Result{}, werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot create export file").
			WithContext("path", s.Dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Result{}, werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot write export file").
			WithContext("path", target)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot write export file").
			WithContext("path", target)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Result{}, werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot move export file").
			WithContext("path", target)
	}

	return Result{Location: target, SHA256: Checksum(data), Size: len(data)}, nil
}
