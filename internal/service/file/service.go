package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Import for GIF decoding support
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/upload"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Import for WebP decoding support
)

const (
	// DefaultMaxUploadSize applies when no cap is configured.
	DefaultMaxUploadSize int64 = 5 << 20

	// avatarCompressThreshold is the size above which avatars are re-encoded.
	avatarCompressThreshold = 512 * 1024

	// maxAvatarPixels bounds width*height before an avatar is decoded.
	maxAvatarPixels = 40_000_000
)

var (
	avatarTypes = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
	}
	certificateTypes = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".pdf":  "application/pdf",
	}

	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

type FileService interface {
	// UploadAvatar stores a profile picture and returns its reference
	UploadAvatar(ctx context.Context, file io.Reader, filename string) (string, error)

	// UploadCertificate stores a training certificate byte-for-byte
	UploadCertificate(ctx context.Context, file io.Reader, filename string) (string, error)

	// CheckAvatar reports whether ref holds content an avatar upload would accept:
	// an allowed image type within the size cap
	CheckAvatar(ctx context.Context, ref string) error

	// Generic operations
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, ref string) error
	Exists(ctx context.Context, ref string) (bool, error)
	GetFileURL(ctx context.Context, ref string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	maxSize int64
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage, maxSize int64) FileService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &fileServiceImpl{
		storage: storage,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// UploadAvatar uploads employee avatar
// Images above the threshold are converted to JPEG and scaled down
func (s *fileServiceImpl) UploadAvatar(ctx context.Context, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := avatarTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: only jpg, jpeg, png, gif, webp allowed", upload.ErrInvalidFileType)
	}

	buffer, err := s.readLimited(file)
	if err != nil {
		return "", err
	}

	if len(buffer) > avatarCompressThreshold {
		compressed, err := compressImage(buffer, avatarCompressThreshold)
		if err != nil {
			return "", fmt.Errorf("%w: %v", upload.ErrInvalidFileType, err)
		}
		buffer = compressed
		contentType = "image/jpeg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	}

	ref, err := s.store(ctx, buffer, filename, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return ref, nil
}

// UploadCertificate uploads a training certificate
func (s *fileServiceImpl) UploadCertificate(ctx context.Context, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := certificateTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: only jpg, jpeg, png, pdf allowed", upload.ErrInvalidFileType)
	}

	buffer, err := s.readLimited(file)
	if err != nil {
		return "", err
	}

	ref, err := s.store(ctx, buffer, filename, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload certificate: %w", err)
	}
	return ref, nil
}

func (s *fileServiceImpl) CheckAvatar(ctx context.Context, ref string) error {
	rc, err := s.storage.Download(ctx, ref)
	if err != nil {
		return err
	}
	defer rc.Close()

	buffer, err := s.readLimited(rc)
	if err != nil {
		return err
	}

	sniffed := http.DetectContentType(buffer)
	for _, contentType := range avatarTypes {
		if sniffed == contentType {
			return nil
		}
	}
	return fmt.Errorf("%w: stored content is %s", upload.ErrInvalidFileType, sniffed)
}

func (s *fileServiceImpl) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, ref)
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, ref string) error {
	return s.storage.Delete(ctx, ref)
}

func (s *fileServiceImpl) Exists(ctx context.Context, ref string) (bool, error) {
	return s.storage.Exists(ctx, ref)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, ref, expiry)
}

// ==================== HELPER FUNCTIONS ====================

func (s *fileServiceImpl) readLimited(file io.Reader) ([]byte, error) {
	buffer, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(buffer)) > s.maxSize {
		return nil, upload.ErrFileTooLarge
	}
	return buffer, nil
}

func (s *fileServiceImpl) store(ctx context.Context, content []byte, filename, contentType string) (string, error) {
	name := storedName(s.now(), filename)

	// Two uploads of the same name in the same millisecond get a random infix
	exists, err := s.storage.Exists(ctx, name)
	if err == nil && exists {
		name = storedName(s.now(), uuid.New().String()[:8]+"-"+filename)
	}

	return s.storage.Upload(ctx, bytes.NewReader(content), name, contentType)
}

// storedName builds "<unixmillis>-<sanitized original name>".
func storedName(now time.Time, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-.")

	if base == "" {
		base = uuid.New().String()
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), base, ext)
}

// compressImage re-encodes an image as JPEG until it fits maxSize,
// lowering quality first and then scaling down
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if int64(config.Width)*int64(config.Height) > maxAvatarPixels {
		return nil, fmt.Errorf("image is %dx%d, above %d pixels", config.Width, config.Height, maxAvatarPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	// Still too large, shrink dimensions until it fits
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	for len(compressed) > maxSize && width > 64 && height > 64 {
		ratio := math.Sqrt(float64(maxSize) / float64(len(compressed)))
		if ratio > 0.9 {
			ratio = 0.9
		}
		width = int(float64(width) * ratio)
		height = int(float64(height) * ratio)

		compressed, err = encodeJPEG(resizeImage(img, width, height), 70)
		if err != nil {
			return nil, err
		}
	}

	return compressed, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// Use CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
