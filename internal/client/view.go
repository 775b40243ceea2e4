package client

import (
	"fmt"
	"io"
	"sync"
)

// TerminalView prints answers to out and alerts to errOut.
type TerminalView struct {
	out    io.Writer
	errOut io.Writer
}

func NewTerminalView(out, errOut io.Writer) *TerminalView {
	return &TerminalView{out: out, errOut: errOut}
}

func (v *TerminalView) Alert(message string) {
	fmt.Fprintln(v.errOut, message)
}

func (v *TerminalView) SetText(text string) {
	fmt.Fprintln(v.out, text)
}

// RecordingView keeps the last text and every alert; used by the benchmark
// and tests.
type RecordingView struct {
	mu     sync.Mutex
	text   string
	alerts []string
}

func (v *RecordingView) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, message)
}

func (v *RecordingView) SetText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text = text
}

func (v *RecordingView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

func (v *RecordingView) Alerts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}
