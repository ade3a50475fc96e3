// Package output contains the event listeners that print request events and
// the tabular rendering of the action catalog.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/memberload/internal/events"
)

// Format represents the available reporter formats
type Format string

const (
	// FormatText is the default human-readable text format
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line
	FormatJSON Format = "json"
	// FormatYAML writes one YAML document per event
	FormatYAML Format = "yaml"
)

// Reporter is a listener pair for the request event streams
type Reporter interface {
	OnSuccess(events.SuccessEvent)
	OnFailure(events.FailureEvent)
}

// Attach registers r on both streams of bus
func Attach(bus *events.Bus, r Reporter) {
	bus.OnSuccess(r.OnSuccess)
	bus.OnFailure(r.OnFailure)
}

// NewReporter returns the reporter for the given format
func NewReporter(format Format, w io.Writer, noColor bool) (Reporter, error) {
	switch format {
	case FormatText, "":
		return NewConsoleReporter(w, noColor), nil
	case FormatJSON:
		return &StructuredReporter{w: w, encode: encodeJSON}, nil
	case FormatYAML:
		return &StructuredReporter{w: w, encode: encodeYAML}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// ConsoleReporter prints one line per event
type ConsoleReporter struct {
	mu      sync.Mutex
	w       io.Writer
	scheme  *ColorScheme
	noColor bool
}

// NewConsoleReporter creates a console reporter writing to w
func NewConsoleReporter(w io.Writer, noColor bool) *ConsoleReporter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &ConsoleReporter{w: w, scheme: scheme, noColor: noColor}
}

// OnSuccess implements Reporter
func (r *ConsoleReporter) OnSuccess(e events.SuccessEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s %-6s %s %s %s%s\n",
		SuccessIcon(r.noColor),
		r.scheme.RequestType.Sprint(e.RequestType),
		r.scheme.Name.Sprint(e.Name),
		r.scheme.Duration.Sprintf("%dms", e.ResponseTime),
		r.scheme.Success.Sprintf("%dB", e.ResponseLength),
		r.tag(e.Tag),
	)
}

// OnFailure implements Reporter
func (r *ConsoleReporter) OnFailure(e events.FailureEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s %-6s %s %s %s%s\n",
		ErrorIcon(r.noColor),
		r.scheme.RequestType.Sprint(e.RequestType),
		r.scheme.Name.Sprint(e.Name),
		r.scheme.Duration.Sprintf("%dms", e.ResponseTime),
		r.scheme.Error.Sprint(errorText(e.Err)),
		r.tag(e.Tag),
	)
}

func (r *ConsoleReporter) tag(tag string) string {
	if tag == "" {
		return ""
	}
	return " " + r.scheme.Tag.Sprintf("[%s]", tag)
}

// record is the structured form of both event kinds
type record struct {
	Outcome        string `json:"outcome" yaml:"outcome"`
	RequestType    string `json:"requestType" yaml:"requestType"`
	Name           string `json:"name" yaml:"name"`
	ResponseTime   int64  `json:"responseTime" yaml:"responseTime"`
	ResponseLength int64  `json:"responseLength,omitempty" yaml:"responseLength,omitempty"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
	Tag            string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// StructuredReporter writes events as JSON lines or YAML documents
type StructuredReporter struct {
	mu     sync.Mutex
	w      io.Writer
	encode func(io.Writer, record) error
}

// OnSuccess implements Reporter
func (r *StructuredReporter) OnSuccess(e events.SuccessEvent) {
	r.write(record{
		Outcome:        "success",
		RequestType:    e.RequestType,
		Name:           e.Name,
		ResponseTime:   e.ResponseTime,
		ResponseLength: e.ResponseLength,
		Tag:            e.Tag,
	})
}

// OnFailure implements Reporter
func (r *StructuredReporter) OnFailure(e events.FailureEvent) {
	r.write(record{
		Outcome:      "failure",
		RequestType:  e.RequestType,
		Name:         e.Name,
		ResponseTime: e.ResponseTime,
		Error:        errorText(e.Err),
		Tag:          e.Tag,
	})
}

func (r *StructuredReporter) write(rec record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// a listener has nowhere to report its own write errors
	_ = r.encode(r.w, rec)
}

func encodeJSON(w io.Writer, rec record) error {
	return json.NewEncoder(w).Encode(rec)
}

func encodeYAML(w io.Writer, rec record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
