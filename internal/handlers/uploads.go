package handlers

import (
	"mime/multipart"

	"fleetrent/internal/common"

	"github.com/labstack/echo/v4"
)

const uploadField = "file"

type upload struct {
	multipart.File
	size        int64
	contentType string
}

// openUpload opens the multipart file field of an image upload request
func openUpload(c echo.Context) (*upload, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return nil, common.ValidationError(uploadField, "is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, common.ValidationError(uploadField, "could not be read")
	}
	return &upload{
		File:        file,
		size:        header.Size,
		contentType: header.Header.Get(echo.HeaderContentType),
	}, nil
}
