package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JustJay7/court-fetcher/pkg/logger"
)

// ErrInvalidFileName is returned for names that are not a plain file name.
var ErrInvalidFileName = errors.New("invalid file name")

// FileStore handles storing downloaded files under the uploads directory
type FileStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileStore creates the uploads directory if needed
func NewFileStore(dir string, logger *logger.Logger) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &FileStore{dir: abs, logger: logger}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Path resolves name inside the uploads directory. Only bare file names are
// accepted.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether path names an existing regular file.
func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Write stores data under name, replacing any existing file atomically.
func (s *FileStore) Write(name string, data []byte) (string, error) {
	fullPath, err := s.Path(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name()) // Clean up on error
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Debug("File stored", "path", fullPath, "size", len(data))
	return fullPath, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// placeholderPDF renders a one page PDF listing the given lines.
func placeholderPDF(title string, lines ...string) []byte {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 16 Tf\n72 760 Td\n")
	fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(title))
	content.WriteString("/F1 11 Tf\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "0 -20 Td\n(%s) Tj\n", pdfEscape(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
