package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aadi90392/yoga-master-full/pkg/response"
)

const maxImageSize = 5 << 20

type uploadedFile struct {
	multipart.File
	name        string
	contentType string
}

// imageUpload opens the "file" form field and checks it is a small image.
// On failure it writes the response and returns false.
func imageUpload(c *gin.Context) (*uploadedFile, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "file is required", nil)
		return nil, false
	}
	if fh.Size > maxImageSize {
		response.Fail(c, http.StatusRequestEntityTooLarge, "file too large", map[string]any{"max_bytes": maxImageSize})
		return nil, false
	}
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		response.Fail(c, http.StatusUnsupportedMediaType, "only images are accepted", nil)
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "cannot read file", nil)
		return nil, false
	}
	return &uploadedFile{File: f, name: fh.Filename, contentType: ct}, true
}
