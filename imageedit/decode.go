package imageedit

import (
	"bytes"
	"encoding/base64"
	"image"
	"regexp"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"icon_studio/errclass"
)

// MaxSourceBytes caps the size of an uploaded reference image.
const MaxSourceBytes = 20 << 20

var dataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// ParseDataURL splits a base64 data URL into its MIME type and payload.
func ParseDataURL(s string) (mime, payload string, ok bool) {
	m := dataURLPattern.FindStringSubmatch(s)
	if len(m) != 3 {
		return "", "", false
	}
	return m[1], m[2], true
}

// FormatDataURL is the inverse of ParseDataURL for binary data.
func FormatDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SniffMIME reports the MIME type of an image from its magic bytes, or ""
// when the data is not a recognised image.
func SniffMIME(data []byte) string {
	if !filetype.IsImage(data) {
		return ""
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// Decode decodes an uploaded image, applying EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errclass.ErrLoadFailure.WithDetails("empty image data")
	}
	if len(data) > MaxSourceBytes {
		return nil, errclass.ErrLoadFailure.WithDetailsf("image exceeds %d bytes", MaxSourceBytes)
	}
	if SniffMIME(data) == "" {
		return nil, errclass.ErrLoadFailure.WithDetails("data is not a recognised image")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errclass.ErrLoadFailure.Wrap(err)
	}
	return img, nil
}

// DecodeDataURL decodes a "data:<mime>;base64,<data>" image.
func DecodeDataURL(s string) (image.Image, error) {
	_, payload, ok := ParseDataURL(s)
	if !ok {
		return nil, errclass.ErrLoadFailure.WithDetails("not a base64 data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errclass.ErrLoadFailure.Wrap(err)
	}
	return Decode(data)
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGDataURL encodes img as a PNG data URL.
func PNGDataURL(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return FormatDataURL("image/png", data), nil
}

// Commit renders src under t and returns the result as a PNG data URL, the
// form attached to generation requests.
func Commit(src image.Image, t Transform, size int) (string, error) {
	out, err := Render(src, t, size)
	if err != nil {
		return "", err
	}
	return PNGDataURL(out)
}
