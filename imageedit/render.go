package imageedit

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"icon_studio/errclass"
)

// MaxCanvasSize is the largest square surface Render will allocate.
const MaxCanvasSize = 8192

// FitSize returns the dimensions a w×h image is drawn at so that its longer
// side exactly spans a size×size canvas before any user transform.
func FitSize(w, h, size int) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	s := float64(size)
	aspect := float64(w) / float64(h)
	if aspect > 1 {
		return s, s / aspect
	}
	return s * aspect, s
}

// Render composites src onto a transparent size×size canvas: the image is fit
// to the canvas, scaled and rotated about the canvas center by t, and drawn
// centered. The output depends only on the arguments.
func Render(src image.Image, t Transform, size int) (*image.NRGBA, error) {
	if src == nil {
		return nil, errclass.ErrLoadFailure.WithDetails("no source image")
	}
	if size <= 0 || size > MaxCanvasSize {
		return nil, errclass.ErrSurfaceUnavailable.WithMessagef("cannot allocate a %dx%d canvas", size, size)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errclass.ErrLoadFailure.WithDetails("source image has no pixels")
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	scale := t.Scale
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}

	drawW, drawH := FitSize(b.Dx(), b.Dy(), size)
	fx := drawW / float64(b.Dx())
	fy := drawH / float64(b.Dy())
	sin, cos := math.Sincos(t.radians())

	// dst = center + R(theta) * scale * diag(fx, fy) * (p - srcCenter)
	a00, a01 := cos*scale*fx, -sin*scale*fy
	a10, a11 := sin*scale*fx, cos*scale*fy
	mx := float64(b.Min.X) + float64(b.Dx())/2
	my := float64(b.Min.Y) + float64(b.Dy())/2
	c := float64(size) / 2

	s2d := f64.Aff3{
		a00, a01, c - (a00*mx + a01*my),
		a10, a11, c - (a10*mx + a11*my),
	}
	draw.BiLinear.Transform(dst, s2d, src, b, draw.Over, nil)
	return dst, nil
}
