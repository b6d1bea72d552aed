package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/viewstate"
)

func TestNewRequest(t *testing.T) {
	req, err := NewRequest(&viewstate.DocumentRef{
		Bytes:       []byte("%PDF-1.4\n"),
		FileName:    "report",
		Fingerprint: "JVBERi0xLjQK",
	})
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}

	want := Request{Content: "JVBERi0xLjQK", FileName: "report.pdf", Encoding: "base64", Format: "pdf"}
	if req != want {
		t.Errorf("NewRequest() = %+v, want %+v", req, want)
	}
}

func TestNewRequestWithoutDocument(t *testing.T) {
	docs := []*viewstate.DocumentRef{
		nil,
		{Fingerprint: viewstate.WarningFingerprint},
	}
	for _, doc := range docs {
		if _, err := NewRequest(doc); !werrors.IsCode(err, werrors.ErrNoDocument) {
			t.Errorf("NewRequest(%+v) = %v", doc, err)
		}
	}
}

func TestFileService(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := &FileService{Dir: dir}

	res, err := svc.Download(context.Background(), Request{
		Content:  "JVBERi0xLjQK",
		FileName: "../escape/report.pdf",
		Encoding: EncodingBase64,
		Format:   FormatPDF,
	})
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	if res.Location != filepath.Join(dir, "report.pdf") {
		t.Errorf("Location = %q", res.Location)
	}
	data, err := os.ReadFile(res.Location)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4\n" {
		t.Errorf("content = %q", data)
	}
	if res.Size != 9 || res.SHA256 != Checksum(data) {
		t.Errorf("Result = %+v", res)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestFileServiceRejects(t *testing.T) {
	svc := &FileService{Dir: t.TempDir()}
	tests := []struct {
		name string
		req  Request
	}{
		{"wrong format", Request{Content: "JVBERi0xLjQK", FileName: "a.pdf", Encoding: "base64", Format: "png"}},
		{"wrong encoding", Request{Content: "JVBERi0xLjQK", FileName: "a.pdf", Encoding: "hex", Format: "pdf"}},
		{"bad content", Request{Content: "%%%", FileName: "a.pdf", Encoding: "base64", Format: "pdf"}},
		{"no name", Request{Content: "JVBERi0xLjQK", FileName: " ", Encoding: "base64", Format: "pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Download(context.Background(), tt.req); !werrors.IsCode(err, werrors.ErrExportFailed) {
				t.Errorf("Download() = %v", err)
			}
		})
	}
}
