package analysis

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Document is a file selected for upload. Content is read lazily through Open.
type Document struct {
	Name        string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

// Open returns a fresh reader over the document content.
func (d Document) Open() (io.ReadCloser, error) {
	if d.open == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return d.open()
}

// NewDocument wraps in-memory content.
func NewDocument(name, contentType string, data []byte) Document {
	return Document{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DocumentFromPath stats path and returns a document that opens it on demand.
func DocumentFromPath(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:        filepath.Base(path),
		ContentType: ContentTypeFor(path),
		Size:        info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// ContentTypeFor maps the extensions the analyzer accepts; anything else is octet-stream.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}

// Field is one named form value, in document order.
type Field struct {
	Name  string
	Value string
}

// Attachment is a document bound to a form field name.
type Attachment struct {
	Field    string
	Document Document
}

// Submission is the multipart payload collected from the upload form.
type Submission struct {
	Fields      []Field
	Attachments []Attachment
}

// Filenames lists attachment names in order.
func (s Submission) Filenames() []string {
	names := make([]string, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		names = append(names, a.Document.Name)
	}
	return names
}
