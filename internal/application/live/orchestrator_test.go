package live

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/presentation/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedInput struct {
	events chan KeyEvent
	closed bool
}

func newScriptedInput(keys ...KeyEvent) *scriptedInput {
	in := &scriptedInput{events: make(chan KeyEvent, len(keys))}
	for _, k := range keys {
		in.events <- k
	}
	close(in.events)
	return in
}

func (s *scriptedInput) Events() <-chan KeyEvent { return s.events }
func (s *scriptedInput) Close() error {
	s.closed = true
	return nil
}

type fakeMonitor struct {
	events chan model.FileEvent
	closed bool
}

func (m *fakeMonitor) Events() <-chan model.FileEvent { return m.events }
func (m *fakeMonitor) Close() error {
	m.closed = true
	return nil
}

func char(r rune) KeyEvent { return KeyEvent{Key: r, Type: KeyChar} }

func newTestOrchestrator(t *testing.T, out *bytes.Buffer, input InputHandler) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(&Config{
		Source:          newFakeSource(),
		Out:             out,
		Today:           fixedToday,
		Sizer:           func() *layout.Sizer { return layout.NewSizer(100, 60) },
		RefreshInterval: time.Hour,
		Input:           input,
	})
	require.NoError(t, err)
	return o
}

func TestOrchestrator_NavigatesDays(t *testing.T) {
	var out bytes.Buffer
	input := newScriptedInput(char('n'), KeyEvent{Type: KeyArrowLeft}, char('p'), char('q'), char('n'))
	o := newTestOrchestrator(t, &out, input)

	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, "2024-03-09", o.State().Date())
	assert.True(t, input.closed)

	rendered := out.String()
	assert.Contains(t, rendered, "Sun, Mar 10 2024 (today)")
	assert.Contains(t, rendered, "Mon, Mar 11 2024")
	assert.Contains(t, rendered, "Sat, Mar 9 2024")
	assert.NotContains(t, rendered, "\033[?1049h")
}

func TestOrchestrator_TodayAndLayout(t *testing.T) {
	var out bytes.Buffer
	input := newScriptedInput(char('n'), char('n'), char('t'), char('l'))
	o := newTestOrchestrator(t, &out, input)

	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, "2024-03-10", o.State().Date())
	assert.Equal(t, layout.StyleMinimal, o.State().Layout())
	assert.Contains(t, out.String(), "Habits 2024-03-10 | 30m | Study 30m")
}

func TestOrchestrator_RefreshesOnFileEvents(t *testing.T) {
	src := newFakeSource()
	monitor := &fakeMonitor{events: make(chan model.FileEvent)}
	keys := make(chan KeyEvent)
	input := &chanInput{events: keys}

	o, err := NewOrchestrator(&Config{
		Source:          src,
		Out:             &bytes.Buffer{},
		Today:           fixedToday,
		Sizer:           func() *layout.Sizer { return layout.NewSizer(100, 60) },
		RefreshInterval: time.Hour,
		Input:           input,
		Monitor:         monitor,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	monitor.events <- model.FileEvent{Path: "activities.json", Operation: "WRITE"}
	keys <- char('q')

	require.NoError(t, <-done)
	assert.Equal(t, 2, src.calls)
	assert.True(t, monitor.closed)
}

func TestOrchestrator_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	input := &chanInput{events: make(chan KeyEvent)}
	o := newTestOrchestrator(t, &bytes.Buffer{}, input)

	cancel()
	assert.NoError(t, o.Run(ctx))
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := NewOrchestrator(&Config{})
	assert.Error(t, err)

	_, err = NewOrchestrator(&Config{Source: newFakeSource(), Date: "10/03/2024"})
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

type chanInput struct {
	events chan KeyEvent
}

func (c *chanInput) Events() <-chan KeyEvent { return c.events }
func (c *chanInput) Close() error            { return nil }
