package generator

import (
	"context"
	"fmt"
	"hash/fnv"
)

// MockLLM is an offline stand-in for local debugging. It answers with a
// fenced SVG whose color is derived from the prompt, so repeated requests
// are stable and the fence cleanup path gets exercised.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt.User))
	sum := h.Sum32()
	fill := fmt.Sprintf("#%06x", sum&0xffffff)

	shape := fmt.Sprintf(`<circle cx="256" cy="256" r="%d" fill="%s"/>`, 96+int(sum%96), fill)
	if prompt.Image != nil {
		shape += `<rect x="176" y="176" width="160" height="160" rx="24" fill="none" stroke="#ffffff" stroke-width="16"/>`
	}
	return "Here is your icon:\n```svg\n" +
		`<svg viewBox="0 0 512 512" xmlns="http://www.w3.org/2000/svg">` + shape + "</svg>\n```\n", nil
}
