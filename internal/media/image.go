package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	MaxUploadSize     = 2 * 1024 * 1024
	BackgroundMaxSide = 800
	AvatarSize        = 400
	JPEGQuality       = 80
)

var (
	ErrTooLarge        = errors.New("image size must be less than 2MB")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrDecode          = errors.New("failed to decode image")
)

// Kind назначение загружаемого изображения
type Kind string

const (
	KindAvatar     Kind = "avatars"
	KindBackground Kind = "backgrounds"
)

var allowedExt = map[Kind][]string{
	KindAvatar:     {"jpg", "jpeg", "png"},
	KindBackground: {"jpg", "jpeg", "png", "gif"},
}

// ValidateUpload проверяет размер и расширение файла до декодирования
func ValidateUpload(kind Kind, filename string, size int64) error {
	if size > MaxUploadSize {
		return ErrTooLarge
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range allowedExt[kind] {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

// ObjectPath путь вида avatars/{user_id}/{unix_ms}.jpg; после сжатия всегда JPEG
func ObjectPath(kind Kind, userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d.jpg", kind, userID, now.UnixMilli())
}

// CompressBackground уменьшает большую сторону до 800px с сохранением пропорций
func CompressBackground(r io.Reader) ([]byte, error) {
	src, err := decode(r)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > h && w > BackgroundMaxSide {
		h = h * BackgroundMaxSide / w
		w = BackgroundMaxSide
	} else if h > BackgroundMaxSide {
		w = w * BackgroundMaxSide / h
		h = BackgroundMaxSide
	}

	return encode(scale(src, max(w, 1), max(h, 1)))
}

// CompressAvatar приводит изображение к квадрату 400x400
func CompressAvatar(r io.Reader) ([]byte, error) {
	src, err := decode(r)
	if err != nil {
		return nil, err
	}
	return encode(scale(src, AvatarSize, AvatarSize))
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func scale(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
