package controllers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStore keeps uploaded images and returns their public URL.
type ImageStore interface {
	Upload(objectPath string, data io.Reader, contentType string) (string, error)
}

type UploadController struct {
	store ImageStore
}

func NewUploadController(store ImageStore) *UploadController {
	return &UploadController{store: store}
}

// POST /api/v1/surveys/upload-image
func (uc *UploadController) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing file"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File is larger than 5MB"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read file"})
		return
	}
	if len(data) > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File is larger than 5MB"})
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only JPEG, PNG, GIF and WEBP images are allowed"})
		return
	}

	objectPath := fmt.Sprintf("survey-images/%s.%s", uuid.NewString(), ext)
	url, err := uc.store.Upload(objectPath, bytes.NewReader(data), contentType)
	if err != nil {
		log.Printf("upload image %s: %v", objectPath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Upload successful",
		"url":      url,
		"filename": objectPath,
	})
}
