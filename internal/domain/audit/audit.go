// Package audit defines the issuance audit trail written alongside documents.
package audit

import (
	"context"

	"transdoc/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionIssue  Action = "issue"
	ActionLink   Action = "link"
	ActionRebase Action = "rebase"
)

// Entry is one audit record. Changes is serialized as JSON by the recorder.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Operator   string
	Changes    map[string]any
}

// Recorder persists audit entries. Implementations write through the
// transaction in ctx when one is active.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, entry Entry) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

// Discard drops every entry.
var Discard Recorder = RecorderFunc(func(context.Context, Entry) error { return nil })
