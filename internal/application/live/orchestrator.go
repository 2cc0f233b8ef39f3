package live

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/data/watcher"
	"github.com/penwyp/go-habit-timeline/internal/presentation/layout"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

// Action is what a key press asks the live view to do.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionToday
	ActionToggleLayout
	ActionRefresh
	ActionQuit
)

// ActionForKey maps a key event to an action.
func ActionForKey(ev KeyEvent) Action {
	switch ev.Type {
	case KeyArrowRight:
		return ActionNext
	case KeyArrowLeft:
		return ActionPrev
	case KeyEscape:
		return ActionQuit
	case KeyChar:
		switch ev.Key {
		case 'n', 'N':
			return ActionNext
		case 'p', 'P':
			return ActionPrev
		case 't', 'T':
			return ActionToday
		case 'l', 'L':
			return ActionToggleLayout
		case 'r', 'R':
			return ActionRefresh
		case 'q', 'Q', keyCtrlC:
			return ActionQuit
		}
	}
	return ActionNone
}

// Orchestrator coordinates all components of the live view
type Orchestrator struct {
	config *Config

	state       *StateManager
	refreshCtrl *RefreshController

	keyboard InputHandler
	watcher  FileMonitor

	// altScreen is set when the orchestrator owns the terminal.
	altScreen bool
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if config.Date != "" {
		if _, err := model.ParseDate(config.Date); err != nil {
			return nil, err
		}
	}

	return &Orchestrator{
		config:      config,
		state:       NewStateManager(config.Date, config.Today, config.Layout),
		refreshCtrl: NewRefreshController(config.Source, config.Recorder),
		keyboard:    config.Input,
		watcher:     config.Monitor,
	}, nil
}

// State exposes the view state.
func (o *Orchestrator) State() *StateManager {
	return o.state
}

// Run draws the selected day and reacts to keys, data changes and the
// refresh ticker until the user quits or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting live timeline", util.F("source", o.config.Source.Name()), util.F("date", o.state.Date()))
	defer o.Close()

	if o.keyboard == nil {
		keyboard, err := NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.keyboard = keyboard
		o.enterAltScreen()
	}

	o.startWatcher()

	o.refresh(ctx)
	o.render()

	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	var fileEvents <-chan model.FileEvent
	if o.watcher != nil {
		fileEvents = o.watcher.Events()
	}
	keyEvents := o.keyboard.Events()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down live timeline")
			return nil

		case <-ticker.C:
			o.refresh(ctx)
			o.render()

		case event, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			util.LogDebug("Data changed", util.F("path", event.Path), util.F("op", event.Operation))
			o.invalidate()
			o.refresh(ctx)
			o.render()

		case keyEvent, ok := <-keyEvents:
			if !ok {
				return nil
			}
			if o.handleKeyboard(ctx, keyEvent) {
				return nil
			}
		}
	}
}

// handleKeyboard applies one key press and reports whether to exit.
func (o *Orchestrator) handleKeyboard(ctx context.Context, ev KeyEvent) bool {
	switch ActionForKey(ev) {
	case ActionQuit:
		return true
	case ActionNext:
		o.shift(ctx, 1)
	case ActionPrev:
		o.shift(ctx, -1)
	case ActionToday:
		o.state.JumpToday()
		o.refresh(ctx)
	case ActionToggleLayout:
		util.LogDebug("Layout changed", util.F("layout", o.state.ToggleLayout()))
	case ActionRefresh:
		o.invalidate()
		o.refresh(ctx)
	default:
		return false
	}
	o.render()
	return false
}

func (o *Orchestrator) shift(ctx context.Context, days int) {
	if _, err := o.state.Shift(days); err != nil {
		o.state.SetWarning(err.Error())
		return
	}
	o.refresh(ctx)
}

func (o *Orchestrator) refresh(ctx context.Context) {
	date := o.state.Date()
	result, err := o.refreshCtrl.Refresh(ctx, date)
	if err != nil {
		util.LogWarn("Refresh failed", util.F("date", date), util.F("error", err.Error()))
		o.state.SetWarning(err.Error())
		return
	}
	o.state.SetResult(result.Model, result.Stats, util.GetTimeProvider().Now())
}

// invalidate drops cached source data so the next refresh reloads it.
func (o *Orchestrator) invalidate() {
	if c, ok := source.As[interface{ Invalidate() }](o.config.Source); ok {
		c.Invalidate()
	}
}

func (o *Orchestrator) render() {
	view := o.state.View(o.config.Source.Name(), o.config.Color)
	strategy := layout.GetLayoutStrategy(o.state.Layout())

	var buf bytes.Buffer
	if o.altScreen {
		buf.WriteString(util.ClearScreen)
		buf.WriteString(util.MoveCursorHome)
	}
	if err := strategy.Render(&buf, view, o.config.Sizer()); err != nil {
		util.LogError("Render failed", util.F("layout", strategy.GetName()), util.F("error", err.Error()))
		return
	}
	_, _ = o.config.Out.Write(buf.Bytes())
}

// startWatcher watches the data directories. When watching fails the view
// keeps working on the refresh ticker alone.
func (o *Orchestrator) startWatcher() {
	if o.watcher != nil || len(o.config.WatchDirs) == 0 {
		return
	}
	fw, err := watcher.NewFileWatcher(o.config.WatchDirs, watcher.DefaultDebounce)
	if err != nil {
		util.LogWarn("File watching disabled", util.F("error", err.Error()))
		return
	}
	o.watcher = fw
}

func (o *Orchestrator) enterAltScreen() {
	fmt.Fprint(o.config.Out, util.EnterAltScreen+util.ClearScreen+util.MoveCursorHome+util.HideCursor)
	o.altScreen = true
}

func (o *Orchestrator) exitAltScreen() {
	if !o.altScreen {
		return
	}
	fmt.Fprint(o.config.Out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAltScreen)
	o.altScreen = false
}

// Close releases the terminal, keyboard and watcher.
func (o *Orchestrator) Close() {
	o.exitAltScreen()
	if o.keyboard != nil {
		if err := o.keyboard.Close(); err != nil {
			util.LogDebugf("Keyboard close: %v", err)
		}
	}
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			util.LogDebugf("Watcher close: %v", err)
		}
	}
}
