// Package export turns a generated SVG into a downloadable file: the markup
// itself, or a square PNG/JPEG raster of it.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"icon_studio/errclass"
)

// Format is an export file format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat accepts svg, png, jpeg and jpg, in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", errclass.ErrUnsupportedFormat.WithDetailsf("unknown export format %q", s)
}

// Extension is the file extension used for f.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MediaType is the MIME type of f.
func (f Format) MediaType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// DefaultSizes are the selectable raster resolutions, in pixels per side.
var DefaultSizes = []int{512, 1024, 2048, 4096}

// DefaultSize is used when no resolution is requested.
const DefaultSize = 1024

// fallbackViewBox is assumed for markup that declares neither a viewBox nor
// a width and height.
const fallbackViewBox = 512

const jpegQuality = 95

// File is an export ready to be written or served.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// Exporter produces export files at a configured set of resolutions.
// Restricting sizes to a single value gives a fixed-resolution exporter.
type Exporter struct {
	sizes       []int
	defaultSize int
}

// NewExporter validates the resolution set. Empty sizes means DefaultSizes;
// a zero defaultSize means DefaultSize, or the first size when DefaultSize is
// not offered.
func NewExporter(sizes []int, defaultSize int) (*Exporter, error) {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("export: invalid size %d", s)
		}
	}
	sizes = slices.Clone(sizes)
	slices.Sort(sizes)
	if defaultSize == 0 {
		defaultSize = DefaultSize
		if !slices.Contains(sizes, defaultSize) {
			defaultSize = sizes[0]
		}
	}
	if !slices.Contains(sizes, defaultSize) {
		return nil, fmt.Errorf("export: default size %d not among %v", defaultSize, sizes)
	}
	return &Exporter{sizes: sizes, defaultSize: defaultSize}, nil
}

// Sizes returns the offered resolutions in ascending order.
func (e *Exporter) Sizes() []int { return slices.Clone(e.sizes) }

// DefaultSize returns the resolution used when none is requested.
func (e *Exporter) DefaultSize() int { return e.defaultSize }

// Export renders svg in format f. The file is named after label. size is
// ignored for SVG; zero selects the default resolution.
func (e *Exporter) Export(label, svg string, f Format, size int) (File, error) {
	name := Filename(label, f.Extension())
	switch f {
	case FormatSVG:
		return File{Name: name, MediaType: f.MediaType(), Data: []byte(svg)}, nil
	case FormatPNG, FormatJPEG:
	default:
		return File{}, errclass.ErrUnsupportedFormat.WithDetailsf("unknown export format %q", f)
	}

	if size == 0 {
		size = e.defaultSize
	}
	if !slices.Contains(e.sizes, size) {
		return File{}, errclass.ErrInvalidRequest.WithDetailsf("size %d not offered; choose one of %v", size, e.sizes)
	}

	var bg color.Color
	if f == FormatJPEG {
		bg = color.White
	}
	img, err := Rasterize(svg, size, bg)
	if err != nil {
		return File{}, err
	}

	var buf bytes.Buffer
	if f == FormatJPEG {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return File{}, errclass.ErrSurfaceUnavailable.Wrap(err)
	}
	return File{Name: name, MediaType: f.MediaType(), Data: buf.Bytes()}, nil
}

// Rasterize draws svg stretched over a size×size image. A nil background
// leaves the canvas transparent; otherwise it is painted first.
func Rasterize(svg string, size int, background color.Color) (*image.RGBA, error) {
	if size <= 0 || size > 8192 {
		return nil, errclass.ErrSurfaceUnavailable.WithMessagef("cannot allocate a %dx%d canvas", size, size)
	}
	if !strings.Contains(strings.ToLower(svg), "<svg") {
		return nil, errclass.ErrLoadFailure.WithDetails("content is not SVG markup")
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errclass.ErrLoadFailure.Wrap(err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.W, icon.ViewBox.H = fallbackViewBox, fallbackViewBox
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}
