// Package storage persists uploaded estimate documents and returns the URL
// customers use to fetch them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// EstimatesDir is the folder, under the static root or bucket, holding
// uploaded estimate PDFs.
const EstimatesDir = "estimates"

var ErrInvalidName = errors.New("invalid document name")

type DocumentStore interface {
	// Save stores body under name and returns its public URL.
	Save(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
}

// LocalStore writes documents under <staticDir>/estimates, which the HTTP
// server exposes at /static.
type LocalStore struct {
	staticDir string
	baseURL   string
}

func NewLocalStore(staticDir, publicBaseURL string) *LocalStore {
	return &LocalStore{
		staticDir: staticDir,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *LocalStore) Save(ctx context.Context, name string, body io.Reader, _ string) (string, error) {
	target, err := s.targetPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create estimates dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close document: %w", err)
	}

	return s.baseURL + "/static/" + EstimatesDir + "/" + name, nil
}

// targetPath refuses names that would escape the estimates folder.
func (s *LocalStore) targetPath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	base := filepath.Clean(filepath.Join(s.staticDir, EstimatesDir))
	target := filepath.Clean(filepath.Join(base, name))
	if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return target, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != name || path.Base(name) != name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
