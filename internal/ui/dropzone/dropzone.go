// Package dropzone handles drag-and-drop onto the page's file-drop target.
package dropzone

import (
	"fmt"

	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

// EventType is the drag event name.
type EventType string

const (
	DragEnter EventType = "dragenter"
	DragOver  EventType = "dragover"
	DragLeave EventType = "dragleave"
	Drop      EventType = "drop"
)

// HighlightClass marks the drop target while a drag is over it.
const HighlightClass = "highlight"

// Event is one drag event delivered to the drop target.
type Event struct {
	Type  EventType
	Files []analysis.Document

	defaultPrevented   bool
	propagationStopped bool
}

func NewEvent(t EventType, files ...analysis.Document) *Event {
	return &Event{Type: t, Files: files}
}

func (e *Event) PreventDefault()          { e.defaultPrevented = true }
func (e *Event) StopPropagation()         { e.propagationStopped = true }
func (e *Event) DefaultPrevented() bool   { return e.defaultPrevented }
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// Target is the drop target's class list.
type Target interface {
	AddClass(class string)
	RemoveClass(class string)
}

// FileSelector is the file-selection control the dropped files go into.
type FileSelector interface {
	SetFiles(docs []analysis.Document)
}

// Highlighter keeps the drop target's highlight state and forwards dropped files.
type Highlighter struct {
	target Target
	input  FileSelector
}

func New(target Target, input FileSelector) *Highlighter {
	return &Highlighter{target: target, input: input}
}

// Handle processes one drag event. Every event has its default suppressed so
// the host never opens the file itself.
func (h *Highlighter) Handle(e *Event) error {
	e.PreventDefault()
	e.StopPropagation()

	switch e.Type {
	case DragEnter, DragOver:
		h.target.AddClass(HighlightClass)
	case DragLeave:
		h.target.RemoveClass(HighlightClass)
	case Drop:
		h.target.RemoveClass(HighlightClass)
		h.input.SetFiles(e.Files)
	default:
		return fmt.Errorf("dropzone: unknown event %q", e.Type)
	}
	return nil
}

// DropFiles runs the full enter, over, drop sequence for docs.
func (h *Highlighter) DropFiles(docs ...analysis.Document) error {
	for _, e := range []*Event{NewEvent(DragEnter), NewEvent(DragOver), NewEvent(Drop, docs...)} {
		if err := h.Handle(e); err != nil {
			return err
		}
	}
	return nil
}
