package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon_studio/errclass"
	"icon_studio/history"
)

type fakeLLM struct {
	mu    sync.Mutex
	calls []Prompt
	fn    func(ctx context.Context, p Prompt) (string, error)
}

func (f *fakeLLM) Complete(ctx context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	return f.fn(ctx, p)
}

func (f *fakeLLM) prompts() []Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Prompt(nil), f.calls...)
}

func respond(svg string) func(context.Context, Prompt) (string, error) {
	return func(context.Context, Prompt) (string, error) { return svg, nil }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, llm LLMClient) *Session {
	t.Helper()
	agent, err := NewAgent(llm, quietLogger())
	require.NoError(t, err)
	return NewSession("s1", agent)
}

const pngDataURL = "data:image/png;base64,iVBORw0KGgo="

func TestExtractSVG(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		fallback bool
	}{
		{"fenced", "```svg\n<svg><rect/></svg>\n```", "<svg><rect/></svg>", false},
		{"bare", `<svg viewBox="0 0 1 1"></svg>`, `<svg viewBox="0 0 1 1"></svg>`, false},
		{"case insensitive", "Sure!\n<SVG>\n<path/>\n</SVG> done", "<SVG>\n<path/>\n</SVG>", false},
		{"first of two", "<svg>a</svg><svg>b</svg>", "<svg>a</svg>", false},
		{"xml fence fallback", "```xml\n<g/>\n```", "<g/>", true},
		{"plain fallback", "  nothing here  ", "nothing here", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback := ExtractSVG(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.fallback, fallback)
		})
	}
}

func TestPostProcess_EmptyIsFailure(t *testing.T) {
	_, err := PostProcess("```\n```")
	assert.True(t, errors.Is(err, errclass.ErrGenerationFailure))

	res, err := PostProcess("<svg/>plain")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "<svg/>plain", res.SVG)
}

func TestBuildIconPrompt(t *testing.T) {
	p := BuildIconPrompt(Request{Prompt: "cloud upload", Style: "Flat"})
	assert.Contains(t, p.System, "Return ONLY the raw SVG code")
	assert.Contains(t, p.User, `Visual Style: "Flat"`)
	assert.Contains(t, p.User, `Subject/Description: "cloud upload"`)
	assert.NotContains(t, p.User, "Primary Color")
	assert.NotContains(t, p.User, "Reference Image Provided")
	assert.Nil(t, p.Image)

	p = BuildIconPrompt(Request{Style: "Pixel", Color: "#3b82f6", ReferenceImage: pngDataURL})
	assert.Contains(t, p.User, `Primary Color: "#3b82f6"`)
	assert.Contains(t, p.User, "Reference Image Provided")
	assert.NotContains(t, p.User, "Subject/Description")
	require.NotNil(t, p.Image)
	assert.Equal(t, "image/png", p.Image.MIMEType)
	assert.Equal(t, "iVBORw0KGgo=", p.Image.Data)
	assert.Equal(t, pngDataURL, p.Image.DataURL())

	p = BuildIconPrompt(Request{Style: "Flat", ReferenceImage: "not-a-data-url"})
	assert.NotContains(t, p.User, "Reference Image Provided")
	assert.Nil(t, p.Image)
}

func TestRequest_NormalizeAndValidate(t *testing.T) {
	r := Request{Prompt: "  rocket  ", Color: "ff0000"}.Normalize()
	assert.Equal(t, "rocket", r.Prompt)
	assert.Equal(t, DefaultStyle, r.Style)
	assert.Equal(t, "#ff0000", r.Color)
	assert.NoError(t, r.Validate())

	assert.True(t, errors.Is(Request{Prompt: "   "}.Validate(), errclass.ErrInvalidRequest))
	assert.NoError(t, Request{ReferenceImage: pngDataURL}.Validate())
	assert.True(t, errors.Is(Request{Prompt: "x", Color: "#12"}.Validate(), errclass.ErrInvalidRequest))

	for _, ref := range []string{"not-an-image", "data:text/plain;base64,aGVsbG8=", "data:image/png,raw"} {
		assert.True(t, errors.Is(Request{ReferenceImage: ref}.Validate(), errclass.ErrInvalidRequest), ref)
		assert.True(t, errors.Is(Request{Prompt: "x", ReferenceImage: ref}.Validate(), errclass.ErrInvalidRequest), ref)
	}
}

func TestSession_MalformedReferenceDoesNotCallModel(t *testing.T) {
	llm := &fakeLLM{fn: respond("<svg/>")}
	s := newTestSession(t, llm)

	_, err := s.Generate(context.Background(), Request{ReferenceImage: "not-an-image"})
	assert.True(t, errors.Is(err, errclass.ErrInvalidRequest))
	assert.Empty(t, llm.prompts())
	assert.Equal(t, 0, history.Len(s.State()))
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "", NormalizeColor("  "))
	assert.Equal(t, "#3b82f6", NormalizeColor("3b82f6"))
	assert.Equal(t, "#123456", NormalizeColor("#1234567890"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Cloud Upload (Flat)", Label("Cloud Upload", "Flat"))
	assert.Equal(t, "Image Reference (Solid)", Label("", "Solid"))
}

func TestNewAgent_RequiresClient(t *testing.T) {
	_, err := NewAgent(nil, nil)
	assert.Error(t, err)
}

func TestAgent_EmptyErrorMessage(t *testing.T) {
	agent, err := NewAgent(&fakeLLM{fn: func(context.Context, Prompt) (string, error) {
		return "", errors.New("")
	}}, quietLogger())
	require.NoError(t, err)
	_, err = agent.Generate(context.Background(), Request{Prompt: "x", Style: "Flat"})
	e := errclass.As(err)
	assert.Equal(t, errclass.ErrGenerationFailure.Code, e.Code)
	assert.Equal(t, defaultFailureDetails, e.Details)
}

func TestSession_GenerateAppends(t *testing.T) {
	llm := &fakeLLM{fn: respond("```svg\n<svg><rect/></svg>\n```")}
	s := newTestSession(t, llm)

	var ids []string
	for i, prompt := range []string{"a", "b", "c"} {
		rec, err := s.Generate(context.Background(), Request{Prompt: prompt, Style: "Line Art", Color: "#000000"})
		require.NoError(t, err)
		ids = append(ids, rec.ID)

		cur, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, rec, cur)
		assert.Equal(t, "<svg><rect/></svg>", cur.SVG)
		assert.Equal(t, prompt+" (Line Art)", cur.Label)

		snap := s.Snapshot()
		assert.Equal(t, i, snap.Cursor)
		assert.Equal(t, i > 0, snap.CanUndo)
		assert.False(t, snap.CanRedo)
		assert.False(t, snap.Pending)
	}
	assert.Len(t, llm.prompts(), 3)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestSession_FailureLeavesHistoryUntouched(t *testing.T) {
	fail := false
	llm := &fakeLLM{fn: func(context.Context, Prompt) (string, error) {
		if fail {
			return "", errors.New("rate limited")
		}
		return "<svg/>", nil
	}}
	s := newTestSession(t, llm)
	_, err := s.Generate(context.Background(), Request{Prompt: "first"})
	require.NoError(t, err)
	before := s.State()

	fail = true
	_, err = s.Generate(context.Background(), Request{Prompt: "second"})
	require.Error(t, err)
	e := errclass.As(err)
	assert.Equal(t, errclass.ErrGenerationFailure.Code, e.Code)
	assert.Equal(t, "Generation Failed", e.Message)
	assert.Equal(t, "rate limited", e.Details)

	assert.Equal(t, before, s.State())
	cur, _ := s.Current()
	assert.Equal(t, "first", cur.Prompt)
}

func TestSession_InvalidRequestDoesNotCallModel(t *testing.T) {
	llm := &fakeLLM{fn: respond("<svg/>")}
	s := newTestSession(t, llm)
	_, err := s.Generate(context.Background(), Request{Style: "Flat"})
	assert.True(t, errors.Is(err, errclass.ErrInvalidRequest))
	assert.Empty(t, llm.prompts())
}

func TestSession_UndoRedoAndBranch(t *testing.T) {
	s := newTestSession(t, &fakeLLM{fn: respond("<svg/>")})
	ctx := context.Background()
	for _, p := range []string{"A", "B", "C"} {
		_, err := s.Generate(ctx, Request{Prompt: p})
		require.NoError(t, err)
	}

	snap := s.Undo()
	assert.Equal(t, "B", snap.Current.Prompt)
	assert.True(t, snap.CanRedo)
	snap = s.Redo()
	assert.Equal(t, "C", snap.Current.Prompt)
	snap = s.Redo()
	assert.Equal(t, 2, snap.Cursor)

	s.Undo()
	s.Undo()
	snap = s.Undo()
	assert.Equal(t, 0, snap.Cursor)

	_, err := s.Generate(ctx, Request{Prompt: "D"})
	require.NoError(t, err)
	snap = s.Snapshot()
	require.Len(t, snap.History, 2)
	assert.Equal(t, "A", snap.History[0].Prompt)
	assert.Equal(t, "D", snap.History[1].Prompt)
	assert.Equal(t, 1, snap.Cursor)
}

func TestSession_Regenerate(t *testing.T) {
	llm := &fakeLLM{fn: respond("<svg/>")}
	s := newTestSession(t, llm)
	ctx := context.Background()

	_, err := s.Regenerate(ctx)
	assert.True(t, errors.Is(err, errclass.ErrInvalidRequest))

	first, err := s.Generate(ctx, Request{Prompt: "bell", Style: "Duotone", Color: "#f59e0b", ReferenceImage: pngDataURL})
	require.NoError(t, err)
	second, err := s.Regenerate(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Request(), second.Request())
	calls := llm.prompts()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
	assert.Equal(t, 2, history.Len(s.State()))
}

func TestSession_SupersededCompletionIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	llm := &fakeLLM{fn: func(_ context.Context, p Prompt) (string, error) {
		if p.User != BuildIconPrompt(Request{Prompt: "slow", Style: DefaultStyle}).User {
			return "<svg>fast</svg>", nil
		}
		close(started)
		<-release
		return "<svg>slow</svg>", nil
	}}
	s := newTestSession(t, llm)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), Request{Prompt: "slow"})
		errc <- err
	}()
	<-started
	assert.True(t, s.Snapshot().Pending)

	fast, err := s.Generate(context.Background(), Request{Prompt: "fast"})
	require.NoError(t, err)
	close(release)

	err = <-errc
	assert.True(t, errors.Is(err, errclass.ErrSuperseded))

	snap := s.Snapshot()
	require.Len(t, snap.History, 1)
	assert.Equal(t, fast.ID, snap.Current.ID)
	assert.False(t, snap.Pending)
}

func TestSession_CloseDiscardsInFlightGeneration(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	llm := &fakeLLM{fn: func(context.Context, Prompt) (string, error) {
		once.Do(func() { close(started) })
		<-release
		return "<svg>late</svg>", nil
	}}
	s := newTestSession(t, llm)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), Request{Prompt: "late"})
		errc <- err
	}()
	<-started
	s.Close()
	close(release)

	assert.True(t, errors.Is(<-errc, errclass.ErrNotFound))
	assert.True(t, s.Closed())
	assert.Equal(t, 0, history.Len(s.State()))

	_, err := s.Generate(context.Background(), Request{Prompt: "again"})
	assert.True(t, errors.Is(err, errclass.ErrNotFound))
	assert.Len(t, llm.prompts(), 1)
}

func TestSession_CreatedAtNeverDecreases(t *testing.T) {
	s := newTestSession(t, &fakeLLM{fn: respond("<svg/>")})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Minute)}
	s.now = func() time.Time {
		next := times[0]
		times = times[1:]
		return next
	}
	a, err := s.Generate(context.Background(), Request{Prompt: "a"})
	require.NoError(t, err)
	b, err := s.Generate(context.Background(), Request{Prompt: "b"})
	require.NoError(t, err)
	assert.False(t, b.CreatedAt.Before(a.CreatedAt))
}

func TestRestoreSession(t *testing.T) {
	recs := []Record{{ID: "1", Prompt: "a"}, {ID: "2", Prompt: "b"}}
	created := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	s, err := RestoreSession("x", created, nil, recs, 0)
	require.NoError(t, err)
	assert.Equal(t, created, s.CreatedAt)
	snap := s.Snapshot()
	assert.Equal(t, "1", snap.Current.ID)
	assert.True(t, snap.CanRedo)

	_, err = RestoreSession("x", created, nil, recs, 5)
	assert.Error(t, err)
}

func TestMockLLM_ProducesExtractableSVG(t *testing.T) {
	raw, err := MockLLM{}.Complete(context.Background(), BuildIconPrompt(Request{Prompt: "star", Style: "Flat"}))
	require.NoError(t, err)
	svg, fallback := ExtractSVG(raw)
	assert.False(t, fallback)
	assert.Contains(t, svg, "<circle")

	again, _ := MockLLM{}.Complete(context.Background(), BuildIconPrompt(Request{Prompt: "star", Style: "Flat"}))
	assert.Equal(t, raw, again)
}
