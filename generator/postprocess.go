package generator

import (
	"regexp"
	"strings"

	"icon_studio/errclass"
)

// svgFragment matches the first <svg ...>...</svg> element, across lines.
var svgFragment = regexp.MustCompile(`(?i)<svg[\s\S]*?</svg>`)

var fenceMarkers = strings.NewReplacer("```xml", "", "```svg", "", "```", "")

// ExtractSVG pulls the SVG markup out of a model response. When the response
// has no <svg> element it falls back to stripping markdown code fences and
// reports fallback=true.
func ExtractSVG(raw string) (svg string, fallback bool) {
	if m := svgFragment.FindString(raw); m != "" {
		return m, false
	}
	return strings.TrimSpace(fenceMarkers.Replace(raw)), true
}

// PostProcess turns raw model output into a Result. Output that is empty
// after cleanup is a generation failure.
func PostProcess(raw string) (Result, error) {
	svg, fallback := ExtractSVG(raw)
	if svg == "" {
		return Result{}, errclass.ErrGenerationFailure.WithDetails("model returned empty content")
	}
	return Result{SVG: svg, Fallback: fallback}, nil
}
