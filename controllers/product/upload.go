package productControllers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// saveImage stores an uploaded image under <uploadsDir>/<folder>/ with a
// unique filename and returns the public path persisted in the database.
func saveImage(c *gin.Context, file *multipart.FileHeader, uploadsDir, folder string) (string, error) {
	saveDir := filepath.Join(uploadsDir, folder)
	if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}

	ext := filepath.Ext(file.Filename)
	base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
	base = strings.ReplaceAll(base, " ", "_")
	filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)

	if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return fmt.Sprintf("/uploads/%s/%s", folder, filename), nil
}

// removeImage deletes a previously stored image, ignoring missing files.
func removeImage(uploadsDir, folder, publicPath string) {
	if publicPath == "" {
		return
	}
	_ = os.Remove(filepath.Join(uploadsDir, folder, filepath.Base(publicPath)))
}
