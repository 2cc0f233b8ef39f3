package live

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/presentation/layout"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

// Config contains configuration for the live view
type Config struct {
	Source   source.Source
	Recorder metrics.Recorder

	// Date is the first day shown; empty means today.
	Date   string
	Layout string
	Color  bool

	// WatchDirs are watched for changes when the source reads local files.
	// With no directories the view polls every RefreshInterval instead.
	WatchDirs       []string
	RefreshInterval time.Duration

	Out   io.Writer
	Today func() string
	Sizer func() *layout.Sizer

	// Input and Monitor replace the terminal keyboard and the fsnotify
	// watcher when set.
	Input   InputHandler
	Monitor FileMonitor
}

// Validate fills defaults and checks required fields.
func (c *Config) Validate() error {
	if c.Source == nil {
		return errors.New("live view needs a source")
	}
	if c.Recorder == nil {
		c.Recorder = metrics.Noop()
	}
	if c.Layout == "" {
		c.Layout = layout.StyleFull
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = constants.DefaultRefreshInterval
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Today == nil {
		c.Today = util.Today
	}
	if c.Sizer == nil {
		c.Sizer = layout.TerminalSizer
	}
	return nil
}
