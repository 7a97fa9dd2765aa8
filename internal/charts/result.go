// Package charts turns uptime backend payloads into chart.js configurations
// and renders each panel as either a chart or an inline error.
package charts

import (
	"encoding/json"
	"html/template"
)

// Result is the outcome of one independent chart fetch.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail wraps an error.
func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// ErrorStyle says how a failed panel shows its error.
type ErrorStyle int

const (
	// ErrorHidden leaves the panel empty; the error is only logged.
	ErrorHidden ErrorStyle = iota
	// ErrorCanvas writes "Error: <msg>" where the chart would be.
	ErrorCanvas
	// ErrorBlock replaces the whole chart container with a message.
	ErrorBlock
)

// Config is a chart.js constructor argument.
type Config struct {
	Type    string         `json:"type"`
	Data    Data           `json:"data"`
	Options map[string]any `json:"options,omitempty"`
	// Plugins lists global plugin names to attach, resolved by the page script.
	Plugins []string `json:"plugins,omitempty"`
}

// Data is the chart.js data block.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one chart.js dataset.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	// Notes are per-point tooltip lines, shown after the value.
	Notes []string `json:"notes,omitempty"`
}

// Panel is what a page renders for one chart slot.
type Panel struct {
	ID     string
	Config *Config
	Error  string
	Err    error
}

// OK reports whether the panel has a chart to mount.
func (p Panel) OK() bool { return p.Config != nil }

// ConfigJSON is the config for embedding in a data attribute or script tag.
func (p Panel) ConfigJSON() template.JS {
	if p.Config == nil {
		return "null"
	}
	blob, err := json.Marshal(p.Config)
	if err != nil {
		return "null"
	}
	return template.JS(blob)
}

// Render is the single consumer of fetch results: a chart when the fetch
// worked, otherwise the error text in the panel's style.
func Render[T any](id string, res Result[T], style ErrorStyle, build func(T) *Config) Panel {
	if res.Err != nil {
		return Panel{ID: id, Error: ErrorText(style, res.Err), Err: res.Err}
	}
	return Panel{ID: id, Config: build(res.Value)}
}

// ErrorText formats err for display in style.
func ErrorText(style ErrorStyle, err error) string {
	if err == nil {
		return ""
	}
	switch style {
	case ErrorCanvas:
		return "Error: " + err.Error()
	case ErrorBlock:
		return "Could not load chart data: " + err.Error()
	default:
		return ""
	}
}
