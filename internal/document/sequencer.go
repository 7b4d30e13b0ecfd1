package document

import "coedit/pkg/logger"

// Sequencer serializes concurrent edits per document into one total
// order. It is the only writer of document content: an operation either
// commits atomically (content spliced, version bumped, op logged) or
// leaves the document untouched.
type Sequencer struct {
	store *Store
}

func NewSequencer(store *Store) *Sequencer {
	return &Sequencer{store: store}
}

// Submit applies op to its document. An op based on the current version
// applies verbatim. A stale op is first transformed through every op
// sequenced since its base version; if its range no longer addresses
// valid content it is rejected and the caller resyncs the origin. A base
// version ahead of the document signals a protocol bug and is rejected.
func (q *Sequencer) Submit(op EditOperation) (SequencedOp, error) {
	d, ok := q.store.lookup(op.DocID)
	if !ok {
		return SequencedOp{}, ErrNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if op.BaseVersion > d.version {
		logger.Sugar.Warnf("edit for doc %d claims base version %d ahead of %d (origin %s)",
			op.DocID, op.BaseVersion, d.version, op.Origin)
		return SequencedOp{}, Rejected{Reason: "future version"}
	}

	r := op.Range
	// d.log[i] produced version i+1, so ops sequenced after BaseVersion
	// start at index BaseVersion.
	for _, applied := range d.log[op.BaseVersion:] {
		r = transformRange(r, applied)
	}

	// A non-empty range that collapsed under transformation means the
	// text this op targeted no longer exists.
	if comparePos(op.Range.From, op.Range.To) != 0 && comparePos(r.From, r.To) == 0 {
		return SequencedOp{}, Rejected{Reason: "range no longer valid"}
	}

	next, ok := splice(d.content, r, op.Text)
	if !ok {
		return SequencedOp{}, Rejected{Reason: "range no longer valid"}
	}

	d.content = next
	d.version++
	sop := SequencedOp{Range: r, Text: op.Text, Version: d.version}
	d.log = append(d.log, sop)
	return sop, nil
}
