package shared

import (
	"errors"
	"mime/multipart"

	"github.com/gin-gonic/gin"
)

var errNoFormImage = errors.New("no image in form")

// FormImage 读取 images 或 image 字段的第一个文件。
func FormImage(c *gin.Context) (*multipart.FileHeader, error) {
	files, err := FormImages(c)
	if err != nil {
		return nil, err
	}
	return files[0], nil
}

// FormImages 读取 images 字段的全部文件，兼容单个 image 字段。
func FormImages(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"images", "image"} {
		if files := form.File[key]; len(files) > 0 {
			return files, nil
		}
	}
	return nil, errNoFormImage
}
