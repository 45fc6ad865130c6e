// Package imaging provides content-type sniffing and PNG normalization for
// uploaded and generated images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	// Register decoders for the accepted upload formats.
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"github.com/interera/interera/pkg/constants"
)

// allowedTypes is the set of accepted upload content types.
var allowedTypes = map[string]bool{
	constants.MIMEJPEG: true,
	constants.MIMEPNG:  true,
	constants.MIMEWebP: true,
}

// AllowedTypes returns the accepted upload content types in sorted order.
func AllowedTypes() []string {
	return []string{constants.MIMEJPEG, constants.MIMEPNG, constants.MIMEWebP}
}

// Allowed reports whether contentType is an accepted upload content type.
func Allowed(contentType string) bool {
	return allowedTypes[contentType]
}

// DetectMediaType sniffs the image format from raw bytes. Formats outside the
// accepted set report application/octet-stream.
func DetectMediaType(data []byte) string {
	switch http.DetectContentType(data) {
	case constants.MIMEPNG:
		return constants.MIMEPNG
	case constants.MIMEJPEG:
		return constants.MIMEJPEG
	case constants.MIMEWebP:
		return constants.MIMEWebP
	default:
		return constants.MIMEOctetStream
	}
}

// EncodePNG decodes data in any registered format (png, jpeg, webp) and
// re-encodes it as PNG. Generated images always leave the service as PNG
// regardless of what the model produced.
func EncodePNG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Already PNG, nothing to normalize
	if format == "png" {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
