package server

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"github.com/yearendparty/banquet/backend/internal/voting"
	"go.uber.org/zap"
)

const (
	maxUploadBytes = 10 << 20 // 10MB ceiling
	thumbnailEdge  = 300
)

var allowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func (h *httpHandler) handlePhotoUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_too_large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedImageExtensions[ext] || !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_file_type"})
		return
	}

	storedName := fmt.Sprintf("photo-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
	storedPath := filepath.Join(h.uploadsDir, storedName)
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		h.logger.Error("failed to store uploaded photo", zap.Error(err), zap.String("file", storedName))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}

	photo, err := h.voting.AddPhoto(c.Request.Context(), voting.NewPhoto{
		Filename:         storedName,
		OriginalFilename: fileHeader.Filename,
		FilePath:         "/uploads/" + storedName,
		UploaderIP:       clientIP(c.Request),
	})
	if err != nil {
		// Keep storage and directory consistent: a failed insert removes
		// the file just written.
		if removeErr := os.Remove(storedPath); removeErr != nil {
			h.logger.Warn("failed to remove orphaned upload", zap.Error(removeErr), zap.String("file", storedName))
		}
		h.logger.Error("failed to record uploaded photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}

	h.writeThumbnail(storedPath, ext)

	c.JSON(http.StatusOK, gin.H{"success": true, "photo": photo})
}

// writeThumbnail renders a 300px JPEG preview beside the original for the
// gallery grid. Only jpeg and png decode without extra codecs; other
// formats and decode failures leave the gallery serving the full image.
func (h *httpHandler) writeThumbnail(storedPath, ext string) {
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return
	}

	source, err := os.Open(storedPath)
	if err != nil {
		h.logger.Warn("thumbnail source open failed", zap.Error(err))
		return
	}
	defer source.Close()

	decoded, _, err := image.Decode(source)
	if err != nil {
		h.logger.Warn("thumbnail decode failed", zap.Error(err), zap.String("file", storedPath))
		return
	}

	thumb := resize.Thumbnail(thumbnailEdge, thumbnailEdge, decoded, resize.Lanczos3)
	thumbPath := filepath.Join(filepath.Dir(storedPath), "thumb-"+filepath.Base(storedPath))
	target, err := os.Create(thumbPath)
	if err != nil {
		h.logger.Warn("thumbnail create failed", zap.Error(err))
		return
	}
	defer target.Close()

	if err := jpeg.Encode(target, thumb, &jpeg.Options{Quality: 80}); err != nil {
		h.logger.Warn("thumbnail encode failed", zap.Error(err))
	}
}
