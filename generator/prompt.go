package generator

import (
	"fmt"
	"strings"

	"icon_studio/imageedit"
)

// Prompt is the message set sent to the model.
type Prompt struct {
	System string
	User   string
	Image  *InlineImage
}

// InlineImage is an image attached to the user message.
type InlineImage struct {
	MIMEType string
	Data     string // base64
}

// DataURL re-encodes the image as a data URL.
func (i InlineImage) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Data
}

const systemInstruction = `You are an expert UI/UX icon designer. Your task is to generate high-quality, professional SVG icons.

Guidelines:
1. Output format: return ONLY the raw SVG code. No markdown formatting (no ` + "```xml or ```svg" + `). No commentary.
2. Icon style:
   - Create clean, vector-based designs.
   - Use a standard square viewBox (e.g. "0 0 512 512").
   - Prioritize bold shapes, clear metaphors, and good contrast.
3. Technical constraints:
   - The SVG must be self-contained.
   - Use inline styles or attributes (fill, stroke) directly on elements.
   - Do not use external CSS or fonts.
   - Center the content within the viewBox with appropriate padding.`

// styleRules lists how each named style should be drawn. All rules are sent
// so the model can disambiguate near-synonyms.
var styleRules = []string{
	`If "Line Art", use strokes with consistent width and no fills (unless necessary for the metaphor).`,
	`If "Solid" or "Glyph", use solid fills and negative space.`,
	`If "Flat", use a modern palette with flat colors and no gradients/shadows unless specified.`,
	`If "Duotone", use two distinct opacity levels or complementary colors.`,
	`If "Pixel", use a blocky, grid-aligned aesthetic.`,
	`If "Geometric", use fundamental geometric shapes (circles, squares, triangles) with mathematical precision.`,
	`If "Abstract", focus on form, balance, and composition rather than literal representation.`,
	`If "Hand-drawn", use organic, slightly uneven lines to simulate a sketched or doodle aesthetic.`,
}

// BuildIconPrompt builds the prompt for one icon request. The reference
// image, if any, is attached inline together with a note about it; a
// malformed data URL contributes neither.
func BuildIconPrompt(req Request) Prompt {
	var sb strings.Builder
	sb.WriteString("Task: Create a professional SVG icon.\n")
	sb.WriteString(fmt.Sprintf("Visual Style: %q\n", req.Style))
	if req.Color != "" {
		sb.WriteString(fmt.Sprintf("Primary Color: %q (use this hex code as the main color for fills or strokes).\n", req.Color))
	}
	sb.WriteString("\nStyle Instructions:\n")
	sb.WriteString(fmt.Sprintf("- Strictly adhere to the %q style.\n", req.Style))
	for _, rule := range styleRules {
		sb.WriteString("- " + rule + "\n")
	}
	sb.WriteString("\nReturn ONLY the SVG string.\n")

	if req.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Subject/Description: %q\n", req.Prompt))
	}

	var img *InlineImage
	if mime, data, ok := imageedit.ParseDataURL(req.ReferenceImage); ok {
		sb.WriteString(fmt.Sprintf("Reference Image Provided: Use the attached image as a strong visual reference for the icon's shape and composition, but simplify it to match the requested %q icon style.\n", req.Style))
		img = &InlineImage{MIMEType: mime, Data: data}
	}

	return Prompt{
		System: systemInstruction,
		User:   sb.String(),
		Image:  img,
	}
}
