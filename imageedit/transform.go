package imageedit

import "math"

// DefaultCanvasSize is the side of the square reference image sent to the model.
const DefaultCanvasSize = 512

// RotationStep is the angle applied by RotateLeft and RotateRight.
const RotationStep = 90

// ScaleRange bounds the zoom factor a Transform may carry.
type ScaleRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// DefaultScaleRange matches the editor's zoom slider.
var DefaultScaleRange = ScaleRange{Min: 0.5, Max: 3.0, Step: 0.1}

// Clamp limits v to the range. NaN and non-positive values map to 1 before
// clamping so a Transform never carries an unusable scale.
func (r ScaleRange) Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		v = 1
	}
	if r.Min > 0 && v < r.Min {
		v = r.Min
	}
	if r.Max > 0 && v > r.Max {
		v = r.Max
	}
	return v
}

// Transform is the user-controlled state of the reference-image editor. A new
// one is created for every loaded source image; it is not persisted.
type Transform struct {
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"` // degrees, clockwise
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: 1}
}

// WithScale returns t with its scale set to v clamped to r.
func (t Transform) WithScale(v float64, r ScaleRange) Transform {
	t.Scale = r.Clamp(v)
	return t
}

func (t Transform) RotateLeft() Transform {
	t.Rotation -= RotationStep
	return t
}

func (t Transform) RotateRight() Transform {
	t.Rotation += RotationStep
	return t
}

// Reset returns the identity transform.
func (t Transform) Reset() Transform {
	return NewTransform()
}

func (t Transform) radians() float64 {
	return t.Rotation * math.Pi / 180
}
