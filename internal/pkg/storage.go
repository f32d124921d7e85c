package pkg

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore 保存上传的图片，返回相对 media 根目录的路径
type ImageStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

var allowedImageExt = map[string]bool{".gif": true, ".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// DiskImageStore 存到 Root/posts/ 下；同名文件已存在时追加一段 uuid
type DiskImageStore struct {
	Root string
}

func (s *DiskImageStore) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	name := filepath.Base(fh.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	dir := filepath.Join(s.Root, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "_" + uuid.NewString()[:8] + ext
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err = dst.ReadFrom(src); err != nil {
		dst.Close()
		return "", err
	}
	if err = dst.Close(); err != nil {
		return "", err
	}
	return path.Join("posts", name), nil
}
