package document

import "errors"

// ErrNotFound is returned when a document id is unknown.
var ErrNotFound = errors.New("document not found")

// Rejected is returned by the sequencer when an edit cannot be applied
// cleanly. The origin receives a full resync instead of the broadcast.
type Rejected struct {
	Reason string
}

func (e Rejected) Error() string {
	return "operation rejected: " + e.Reason
}

// Position is a line/column coordinate in a document. Columns are byte
// offsets within the line, matching the editor's change objects.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Range spans the text to be replaced, From inclusive, To exclusive.
type Range struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// EditOperation is a single range replacement submitted against the
// version the client believes is current.
type EditOperation struct {
	DocID       int64
	BaseVersion uint64
	Range       Range
	Text        string
	Origin      string
}

// SequencedOp is an accepted operation in its final form: its range is
// valid against the content at Version-1, and applying it produces the
// content at Version. Replaying sequenced ops 1..N from the initial
// content reproduces the document exactly.
type SequencedOp struct {
	Range   Range  `json:"range"`
	Text    string `json:"text"`
	Version uint64 `json:"version"`
}

// Document is a read-only snapshot handed out by the store.
type Document struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Version  uint64 `json:"version"`
	Owner    string `json:"owner"`
	Language string `json:"language"`
}

// Summary omits content, for listings.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}
