package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) Format(m *timeline.Model) error {
	return writeJSON(f.w, m)
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
