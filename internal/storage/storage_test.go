package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "https://pos.example.com/")

	url, err := store.Save(context.Background(), "estimate_abc.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if url != "https://pos.example.com/static/estimates/estimate_abc.pdf" {
		t.Fatalf("unexpected url %s", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "estimates", "estimate_abc.pdf"))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost:8000")
	for _, name := range []string{"../evil.pdf", "a/b.pdf", "..", "", " x.pdf"} {
		if _, err := store.Save(context.Background(), name, strings.NewReader("x"), ""); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StoreSave(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3StoreWithClient(putter, "pos-docs", "https://cdn.example.com")

	url, err := store.Save(context.Background(), "estimate_1.pdf", strings.NewReader("pdf"), "application/pdf")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if url != "https://cdn.example.com/estimates/estimate_1.pdf" {
		t.Fatalf("unexpected url %s", url)
	}
	if aws.ToString(putter.input.Bucket) != "pos-docs" || aws.ToString(putter.input.Key) != "estimates/estimate_1.pdf" {
		t.Fatalf("unexpected input %+v", putter.input)
	}
	if aws.ToString(putter.input.ContentType) != "application/pdf" || putter.body != "pdf" {
		t.Fatalf("unexpected content %q %q", aws.ToString(putter.input.ContentType), putter.body)
	}
}

func TestS3StoreSurfacesUploadError(t *testing.T) {
	store := NewS3StoreWithClient(&fakePutter{err: errors.New("denied")}, "b", "u")
	if _, err := store.Save(context.Background(), "x.pdf", strings.NewReader(""), ""); err == nil {
		t.Fatal("expected upload error")
	}
}
