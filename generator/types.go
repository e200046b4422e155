package generator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"icon_studio/errclass"
	"icon_studio/imageedit"
)

// DefaultStyle is used when a request names no style.
const DefaultStyle = "Flat"

// imageReferenceLabel stands in for the prompt of image-only requests.
const imageReferenceLabel = "Image Reference"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Request is one generation attempt as entered by the user.
type Request struct {
	Prompt         string `json:"prompt"`
	Style          string `json:"style"`
	ReferenceImage string `json:"reference_image,omitempty"` // PNG data URL
	Color          string `json:"color,omitempty"`           // #RRGGBB
}

// Normalize trims the prompt, defaults the style and canonicalizes the color.
func (r Request) Normalize() Request {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.Style = strings.TrimSpace(r.Style)
	if r.Style == "" {
		r.Style = DefaultStyle
	}
	r.ReferenceImage = strings.TrimSpace(r.ReferenceImage)
	r.Color = NormalizeColor(r.Color)
	return r
}

// Validate requires a prompt or a reference image, an image data URL when a
// reference is given, and a well-formed color.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" && strings.TrimSpace(r.ReferenceImage) == "" {
		return errclass.ErrInvalidRequest.WithDetails("a prompt or a reference image is required")
	}
	if ref := strings.TrimSpace(r.ReferenceImage); ref != "" {
		mime, _, ok := imageedit.ParseDataURL(ref)
		if !ok || !strings.HasPrefix(mime, "image/") {
			return errclass.ErrInvalidRequest.WithDetails("reference image must be a base64 image data URL")
		}
	}
	if r.Color != "" && !hexColor.MatchString(r.Color) {
		return errclass.ErrInvalidRequest.WithDetailsf("color %q is not a #RRGGBB hex value", r.Color)
	}
	return nil
}

// NormalizeColor prefixes a missing '#' and caps the value at 7 characters.
func NormalizeColor(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return ""
	}
	if !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return c
}

// Label is the human-readable name of a generation, also used for filenames.
func Label(prompt, style string) string {
	if prompt == "" {
		prompt = imageReferenceLabel
	}
	return fmt.Sprintf("%s (%s)", prompt, style)
}

// Result is the post-processed model output.
type Result struct {
	SVG string
	// Fallback is set when no <svg> fragment was found and the raw text was
	// cleaned up instead.
	Fallback bool
}

// Record is one immutable entry of a session's history. It keeps the exact
// inputs that produced the artifact so it can be regenerated.
type Record struct {
	ID                 string    `json:"id"`
	SVG                string    `json:"svg"`
	Label              string    `json:"label"`
	Prompt             string    `json:"prompt"`
	Style              string    `json:"style"`
	Color              string    `json:"color,omitempty"`
	ReferenceImage     string    `json:"reference_image,omitempty"`
	ExtractionFallback bool      `json:"extraction_fallback,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewRecord wraps a result and the request that produced it.
func NewRecord(req Request, res Result, now time.Time) Record {
	return Record{
		ID:                 uuid.NewString(),
		SVG:                res.SVG,
		Label:              Label(req.Prompt, req.Style),
		Prompt:             req.Prompt,
		Style:              req.Style,
		Color:              req.Color,
		ReferenceImage:     req.ReferenceImage,
		ExtractionFallback: res.Fallback,
		CreatedAt:          now,
	}
}

// Request returns the inputs of r, for regeneration.
func (r Record) Request() Request {
	return Request{
		Prompt:         r.Prompt,
		Style:          r.Style,
		ReferenceImage: r.ReferenceImage,
		Color:          r.Color,
	}
}
