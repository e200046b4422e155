// Package imageedit prepares reference images for generation requests.
//
// An uploaded image is decoded, then composited onto a fixed-size square
// canvas under a user-chosen zoom and rotation, and finally encoded as a PNG
// data URL. Rendering is pure: the same image and Transform always yield the
// same pixels, so it can be re-run on every slider movement.
package imageedit
