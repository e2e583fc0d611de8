package crewforge

import (
	"encoding/json"
	"time"
)

// HistoryEntryKind distinguishes phase attempts from refinement decisions in
// the flow history.
type HistoryEntryKind string

const (
	HistoryKindAttempt    HistoryEntryKind = "attempt"
	HistoryKindRefinement HistoryEntryKind = "refinement"
)

// HistoryEntry records a single phase attempt or refinement decision.
// Entries are immutable once appended.
type HistoryEntry struct {
	Phase     Phase            `json:"phase"`
	Attempt   int              `json:"attempt"`
	Kind      HistoryEntryKind `json:"kind"`
	Input     json.RawMessage  `json:"input,omitempty"`
	Output    json.RawMessage  `json:"output,omitempty"`
	Error     string           `json:"error,omitempty"`
	Fallback  bool             `json:"fallback,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// History is an append-only log of every phase attempt of one flow run,
// ordered chronologically. It backs the debug interface and is never exposed
// through the production interface.
type History struct {
	entries []HistoryEntry
}

func newHistory() *History {
	return &History{}
}

// Entries returns a copy of all recorded entries in append order.
func (x *History) Entries() []HistoryEntry {
	entries := make([]HistoryEntry, len(x.entries))
	copy(entries, x.entries)
	return entries
}

// Len returns the number of recorded entries.
func (x *History) Len() int {
	return len(x.entries)
}

func (x *History) recordSuccess(phase Phase, attempt int, input, output any) {
	x.entries = append(x.entries, HistoryEntry{
		Phase:     phase,
		Attempt:   attempt,
		Kind:      HistoryKindAttempt,
		Input:     marshalSnapshot(input),
		Output:    marshalSnapshot(output),
		Timestamp: time.Now(),
	})
}

func (x *History) recordFailure(phase Phase, attempt int, input any, err error, fallback any) {
	x.entries = append(x.entries, HistoryEntry{
		Phase:     phase,
		Attempt:   attempt,
		Kind:      HistoryKindAttempt,
		Input:     marshalSnapshot(input),
		Output:    marshalSnapshot(fallback),
		Error:     err.Error(),
		Fallback:  true,
		Timestamp: time.Now(),
	})
}

func (x *History) recordRefinement(target Phase, iteration int, eval *EvaluationResult) {
	x.entries = append(x.entries, HistoryEntry{
		Phase:     target,
		Attempt:   iteration,
		Kind:      HistoryKindRefinement,
		Input:     marshalSnapshot(eval),
		Timestamp: time.Now(),
	})
}

// marshalSnapshot serializes a snapshot for the history log. Snapshots are
// best-effort observability data, a marshal failure must not break the flow.
func marshalSnapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"snapshot_error":"unserializable"}`)
	}
	return raw
}
