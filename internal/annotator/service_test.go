package annotator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-annotator/internal/api"
	"survey-annotator/internal/config"
	"survey-annotator/internal/dataset"
	"survey-annotator/internal/metrics"
	"survey-annotator/internal/validator"
)

var allowed = []string{"0", "1", "2", "1,2"}

// fakeClient отвечает по очереди из answers на структурированные вызовы
type fakeClient struct {
	id      int
	answers *[]string
	calls   *[]call
	err     error
}

type call struct {
	client int
	system string
	user   string
	format *api.ResponseFormat
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, format *api.ResponseFormat) (string, error) {
	*f.calls = append(*f.calls, call{client: f.id, system: systemPrompt, user: userPrompt, format: format})
	if f.err != nil {
		return "", f.err
	}
	if format == nil {
		return "réponse libre: " + userPrompt, nil
	}
	next := (*f.answers)[0]
	*f.answers = (*f.answers)[1:]
	return next, nil
}

type harness struct {
	answers  []string
	calls    []call
	created  int
	sleeps   []time.Duration
	clientFn func(id int) *fakeClient
}

func (h *harness) factory() Completer {
	h.created++
	c := &fakeClient{id: h.created, answers: &h.answers, calls: &h.calls}
	if h.clientFn != nil {
		c = h.clientFn(h.created)
		c.answers = &h.answers
		c.calls = &h.calls
	}
	return c
}

func newService(t *testing.T, h *harness, opts Options) *Service {
	t.Helper()
	if opts.AllowedAnswers == nil {
		opts.AllowedAnswers = allowed
	}
	svc, err := New(h.factory, opts, metrics.NewMetrics(), nil)
	require.NoError(t, err)
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	return svc
}

func records(texts ...string) []dataset.Response {
	out := make([]dataset.Response, len(texts))
	for i, text := range texts {
		out[i] = dataset.Response{ID: fmt.Sprintf("R_%d", i+1), FreeText: text}
	}
	return out
}

func structured(answer string) string {
	return `{"reasoning":"raison ` + answer + `","answer":"` + answer + `"}`
}

func TestAnnotateAll_CollectsInOrder(t *testing.T) {
	h := &harness{answers: []string{structured("1"), structured("2"), structured("1,2")}}
	svc := newService(t, h, Options{Delay: time.Second})

	got, err := svc.AnnotateAll(context.Background(), Instructions{Chat: "chat", Structured: "structured"}, records("a", "b", "c"))
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, a := range got {
		assert.Equal(t, i, a.TextID)
	}
	assert.Equal(t, "b", got[1].Text)
	assert.Equal(t, "2", got[1].Answer)
	assert.Equal(t, "raison 1,2", got[2].Reasoning)
	assert.Equal(t, "réponse libre: a", got[0].Raw)
}

func TestAnnotateAll_FreshClientPerStructuredCall(t *testing.T) {
	h := &harness{answers: []string{structured("0"), structured("1"), structured("2")}}
	svc := newService(t, h, Options{})

	_, err := svc.AnnotateAll(context.Background(), Instructions{Chat: "chat", Structured: "structured"}, records("a", "b", "c"))
	require.NoError(t, err)

	// один клиент для свободных ответов + по одному на каждый структурированный вызов
	assert.Equal(t, 4, h.created)

	seen := map[int]bool{}
	for _, c := range h.calls {
		if c.format == nil {
			assert.Equal(t, 1, c.client)
			assert.Equal(t, "chat", c.system)
			continue
		}
		assert.False(t, seen[c.client], "client %d reused", c.client)
		seen[c.client] = true
		assert.Equal(t, "structured", c.system)
		assert.Equal(t, "json_schema", c.format.Type)
	}
	assert.Len(t, seen, 3)
}

func TestAnnotateAll_PausesBetweenStructuredCalls(t *testing.T) {
	h := &harness{answers: []string{structured("0"), structured("1"), structured("2")}}
	svc := newService(t, h, Options{Delay: time.Second})

	_, err := svc.AnnotateAll(context.Background(), Instructions{}, records("a", "b", "c"))
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{time.Second, time.Second}, h.sleeps)
}

func TestAnnotateAll_NoPauseWhenDelayZero(t *testing.T) {
	h := &harness{answers: []string{structured("0"), structured("1")}}
	svc := newService(t, h, Options{})

	_, err := svc.AnnotateAll(context.Background(), Instructions{}, records("a", "b"))
	require.NoError(t, err)
	assert.Empty(t, h.sleeps)
}

func TestAnnotateAll_InvalidAnswerAbortsLoop(t *testing.T) {
	h := &harness{answers: []string{structured("1"), structured("3"), structured("2")}}
	svc := newService(t, h, Options{})

	got, err := svc.AnnotateAll(context.Background(), Instructions{}, records("a", "b", "c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, validator.ErrInvalidStructuredOutput))
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), svc.metrics.GetSnapshot().ValidationFailures)
}

func TestAnnotateAll_TransportErrorAbortsLoop(t *testing.T) {
	boom := errors.New("connection refused")
	h := &harness{clientFn: func(id int) *fakeClient { return &fakeClient{id: id, err: boom} }}
	svc := newService(t, h, Options{})

	got, err := svc.AnnotateAll(context.Background(), Instructions{}, records("a", "b"))
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, got)
	assert.Len(t, h.calls, 1)

	snap := svc.metrics.GetSnapshot()
	assert.Equal(t, int64(1), snap.APICallsTotal)
	assert.Equal(t, int64(0), snap.APICallsSuccessful)
}

func TestAnnotateAll_Progress(t *testing.T) {
	h := &harness{answers: []string{structured("0"), structured("1")}}
	var done []int
	svc := newService(t, h, Options{Progress: func(n, total int, a Annotation) {
		assert.Equal(t, 2, total)
		done = append(done, n)
	}})

	_, err := svc.AnnotateAll(context.Background(), Instructions{}, records("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, done)
}

func TestAnnotate_JSONObjectMode(t *testing.T) {
	h := &harness{answers: []string{"```json\n" + structured("1,2") + "\n```"}}
	svc := newService(t, h, Options{StructuredMode: config.ModeJSONObject})

	got, err := svc.Annotate(context.Background(), "s", "texte")
	require.NoError(t, err)
	assert.Equal(t, "1,2", got.Answer)
	require.Len(t, h.calls, 1)
	assert.Equal(t, "json_object", h.calls[0].format.Type)
	assert.Nil(t, h.calls[0].format.JSONSchema)
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepContext(ctx, time.Hour)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNew_RequiresFactory(t *testing.T) {
	_, err := New(nil, Options{AllowedAnswers: allowed}, nil, nil)
	assert.Error(t, err)
}
