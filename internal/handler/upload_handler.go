package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	// 注册常见图片格式的解码器
	_ "image/gif"
	_ "image/png"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const thumbMaxWidth = 480

// UploadImage 处理愿景板图片上传，成功后额外生成缩略图
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	// 生成唯一文件名
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	fileURL := fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), newFilename)
	response := gin.H{"url": fileURL}

	// 缩略图失败不影响上传结果
	if thumbName, err := a.writeThumbnail(filePath, newFilename); err == nil && thumbName != "" {
		response["thumbUrl"] = fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), thumbName)
	}

	c.JSON(http.StatusOK, gin.H{"message": "上传成功", "data": response})
}

// writeThumbnail 为过宽的图片生成 JPEG 缩略图，返回缩略图文件名。
// 图片本身小于阈值时直接跳过。
func (a *API) writeThumbnail(filePath, filename string) (string, error) {
	src, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= thumbMaxWidth {
		return "", nil
	}

	height := bounds.Dy() * thumbMaxWidth / bounds.Dx()
	thumb := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, height))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), img, bounds, draw.Over, nil)

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	thumbName := base + "_thumb.jpg"

	out, err := os.Create(filepath.Join(a.uploadDir, thumbName))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return thumbName, nil
}
