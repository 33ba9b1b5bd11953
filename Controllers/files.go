package Controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps receipts and documents at 5MB.
const MaxUploadSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./Uploads"
}

// EnsureUploadDir is called at startup so the static route has a target.
func EnsureUploadDir() error {
	return os.MkdirAll(UploadDir(), os.ModePerm)
}

// UploadFile accepts one multipart file, re-checking size and type server-side
// even though the form filters them first, and stores it under a unique name.
func UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhum arquivo enviado."})
		return
	}

	if file.Size > MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo muito grande! Máximo 5MB."})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mime := file.Header.Get("Content-Type")
	if !allowedExtensions[ext] || !allowedMimeTypes[mime] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Apenas arquivos de imagem (jpg, png), PDF e documentos (doc, docx) são permitidos."})
		return
	}

	name := fmt.Sprintf("file-%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	if err := c.SaveUploadedFile(file, filepath.Join(UploadDir(), name)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save the file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"filePath": "/uploads/" + name})
}
