package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/genai_gateway/internal/flags"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

type fakeProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	return p.reply, p.err
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type countingRecorder struct {
	asks, disabled, providerErrors int
}

func (r *countingRecorder) IncAsk(string)           { r.asks++ }
func (r *countingRecorder) IncDisabled()            { r.disabled++ }
func (r *countingRecorder) IncProviderError(string) { r.providerErrors++ }

type logEntry struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func entries(t *testing.T, buf *bytes.Buffer) []logEntry {
	t.Helper()
	var out []logEntry
	scanner := bufio.NewScanner(buf)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e logEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

func warnings(t *testing.T, buf *bytes.Buffer) int {
	t.Helper()
	n := 0
	for _, e := range entries(t, buf) {
		if e.Level == "warning" && e.Msg == DisabledMessage {
			n++
		}
	}
	return n
}

func newTestGateway(enabled bool, p Provider) (*Gateway, *flags.Store, *bytes.Buffer, *countingRecorder) {
	var buf bytes.Buffer
	store := flags.NewStore(enabled)
	rec := &countingRecorder{}
	log := logger.NewLogger(logger.Config{Level: logger.DebugLevel, Output: &buf})
	return New(store, p, WithLogger(log), WithRecorder(rec)), store, &buf, rec
}

func TestAskDisabled(t *testing.T) {
	prompts := map[string]string{
		"hello":         "Hello",
		"empty":         "",
		"very long":     strings.Repeat("a", 1<<20),
		"control chars": "\x00\x01\x1b[31m\r\n\t\x7f",
		"invalid utf8":  string([]byte{0xff, 0xfe, 0xfd}),
	}

	for name, prompt := range prompts {
		t.Run(name, func(t *testing.T) {
			provider := &fakeProvider{reply: "should not be used"}
			g, _, buf, rec := newTestGateway(false, provider)

			got, err := g.Ask(context.Background(), prompt)

			require.NoError(t, err)
			assert.Equal(t, "", got)
			assert.Equal(t, 1, warnings(t, buf))
			assert.Zero(t, provider.calls())
			assert.Equal(t, 1, rec.disabled)
			assert.Zero(t, rec.asks)
		})
	}
}

func TestAskDisabledWarnsOncePerCall(t *testing.T) {
	g, _, buf, rec := newTestGateway(false, nil)

	for i := 0; i < 5; i++ {
		got, err := g.Ask(context.Background(), "Hello")
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	assert.Equal(t, 5, warnings(t, buf))
	assert.Equal(t, 5, rec.disabled)
}

func TestAskDisabledCountedBelowLogLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Format: "json", Output: &buf})
	rec := &countingRecorder{}
	g := New(flags.NewStore(false), nil, WithLogger(log), WithRecorder(rec))

	got, err := g.Ask(context.Background(), "Hello")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, buf.Len())
	assert.Equal(t, 1, rec.disabled)
}

func TestAskDisabledIgnoresCancelledContext(t *testing.T) {
	g, _, buf, _ := newTestGateway(false, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := g.Ask(ctx, "Hello")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, warnings(t, buf))
}

func TestAskEnabled(t *testing.T) {
	provider := &fakeProvider{reply: "Hi there"}
	g, _, buf, rec := newTestGateway(true, provider)

	got, err := g.Ask(context.Background(), "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Hi there", got)
	assert.Equal(t, []string{"Hello"}, provider.prompts)
	assert.Zero(t, warnings(t, buf))
	assert.Equal(t, 1, rec.asks)
	assert.Zero(t, rec.disabled)
}

func TestAskEnabledEmptyReply(t *testing.T) {
	g, _, _, _ := newTestGateway(true, &fakeProvider{reply: ""})

	got, err := g.Ask(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAskEnabledProviderError(t *testing.T) {
	upstream := errors.New("rate limited")
	g, _, buf, rec := newTestGateway(true, &fakeProvider{err: upstream})

	got, err := g.Ask(context.Background(), "Hello")

	require.Error(t, err)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 1, rec.providerErrors)

	logged := entries(t, buf)
	require.Len(t, logged, 1)
	assert.Equal(t, "error", logged[0].Level)
}

func TestAskEnabledWithoutProvider(t *testing.T) {
	g, _, _, _ := newTestGateway(true, nil)

	_, err := g.Ask(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestAskFollowsFlagFlips(t *testing.T) {
	provider := &fakeProvider{reply: "generated"}
	g, store, buf, _ := newTestGateway(false, provider)

	got, err := g.Ask(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, g.Enabled())

	store.Set(true)
	assert.True(t, g.Enabled())

	got, err = g.Ask(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "generated", got)
	assert.Equal(t, 1, provider.calls())
	assert.Equal(t, 1, warnings(t, buf), "short-circuit must not trigger once enabled")

	store.Set(false)
	got, err = g.Ask(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, provider.calls())
}

func TestNewDefaults(t *testing.T) {
	g := New(flags.NewStore(false), nil)

	got, err := g.Ask(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, g.ProviderName())

	g = New(flags.NewStore(false), &fakeProvider{})
	assert.Equal(t, "fake", g.ProviderName())
}
