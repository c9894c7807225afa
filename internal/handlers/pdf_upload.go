package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pos-backend/internal/storage"
)

const (
	maxPDFSize = 10 << 20
	msgOnlyPDF = "Only PDF files are allowed."
)

var errNotPDF = errors.New("only pdf files are allowed")

type estimatePDFInput struct {
	PhoneNumber string
	Message     string
	Caption     string
	File        *multipart.FileHeader
}

func parseEstimatePDFRequest(c *gin.Context) (estimatePDFInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return estimatePDFInput{}, err
	}

	input := estimatePDFInput{
		PhoneNumber: strings.TrimSpace(c.PostForm("phone_number")),
		Message:     c.PostForm("message"),
		Caption:     c.PostForm("caption"),
	}
	if input.PhoneNumber == "" {
		return estimatePDFInput{}, fmt.Errorf("phone_number is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return estimatePDFInput{}, fmt.Errorf("message is required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return estimatePDFInput{}, fmt.Errorf("file is required")
		}
		return estimatePDFInput{}, err
	}
	input.File = file
	return input, nil
}

// saveEstimatePDF stores the upload under a random name and returns its
// public URL. Only .pdf uploads are accepted.
func saveEstimatePDF(ctx context.Context, docs storage.DocumentStore, file *multipart.FileHeader) (string, error) {
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return "", errNotPDF
	}
	if file.Size > maxPDFSize {
		return "", fmt.Errorf("pdf file too large (max 10MB)")
	}

	in, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer in.Close()

	name := "estimate_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".pdf"
	return docs.Save(ctx, name, in, "application/pdf")
}
