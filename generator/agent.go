package generator

import (
	"context"
	"errors"
	"log/slog"

	"icon_studio/errclass"
)

// defaultFailureDetails is shown when the client error carries no message.
const defaultFailureDetails = "Failed to generate SVG."

// Agent turns a Request into SVG markup with a single model call.
type Agent struct {
	llm    LLMClient
	logger *slog.Logger
}

func NewAgent(llm LLMClient, logger *slog.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{llm: llm, logger: logger}, nil
}

// Generate validates req, calls the model once and post-processes the
// answer. There is no retry; every client error becomes
// errclass.ErrGenerationFailure carrying the client's message as details.
func (a *Agent) Generate(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	prompt := BuildIconPrompt(req)

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("model call failed", "style", req.Style, "error", err)
		if err.Error() == "" {
			return Result{}, errclass.ErrGenerationFailure.WithDetails(defaultFailureDetails)
		}
		return Result{}, errclass.ErrGenerationFailure.Wrap(err)
	}

	res, err := PostProcess(raw)
	if err != nil {
		a.logger.Error("model returned unusable content", "style", req.Style, "bytes", len(raw))
		return Result{}, err
	}
	if res.Fallback {
		a.logger.Warn("no svg element in response; using cleaned text",
			"code", errclass.ErrExtractionFallback.Code, "bytes", len(res.SVG))
	}
	return res, nil
}
