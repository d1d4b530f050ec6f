package upload

import (
	"fmt"
	"strings"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/pkg/errors"
)

// DefaultMaxFileSize caps uploads at 10 MiB, matching the records
// service's own limit.
const DefaultMaxFileSize = 10 << 20

// acceptedTypes is the media type whitelist for exam uploads. The
// records service re-validates on its side; this gate just saves the
// round trip.
var acceptedTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/bmp":       {},
	"image/tiff":      {},
	"application/pdf": {},
}

// FileInfo describes a candidate upload before any bytes are sent.
type FileInfo struct {
	Filename    string
	Size        int64
	ContentType string
}

// Gate validates candidate uploads. It is a pure check with no side
// effects; the caller decides whether to proceed.
type Gate struct {
	maxFileSize int64
}

func NewGate(maxFileSize int64) *Gate {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Gate{maxFileSize: maxFileSize}
}

// Validate returns nil when the file may enter the pipeline, or a
// validation rejection naming the reason.
func (g *Gate) Validate(file FileInfo) error {
	if file.Size > g.maxFileSize {
		return errors.Validation(fmt.Sprintf(
			"file too large: %s exceeds the %s limit",
			model.FormatFileSize(file.Size), model.FormatFileSize(g.maxFileSize)))
	}

	mediaType := normalizeMediaType(file.ContentType)
	if _, ok := acceptedTypes[mediaType]; !ok {
		return errors.Validation(fmt.Sprintf(
			"unsupported file type %q: use images (JPEG, PNG, GIF, BMP, TIFF) or PDF", file.ContentType))
	}

	return nil
}

// Classify maps an accepted media type onto the exam file type.
func Classify(contentType string) model.FileType {
	if strings.HasPrefix(normalizeMediaType(contentType), "image/") {
		return model.FileTypeImage
	}
	return model.FileTypeDocument
}

func normalizeMediaType(contentType string) string {
	// Strip parameters such as "; charset=binary".
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
