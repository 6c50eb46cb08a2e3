package batch

import (
	"errors"
	"fmt"
)

// DefaultCapBytes is the default maximum size of a single batch (2 GiB)
const DefaultCapBytes int64 = 2 * 1024 * 1024 * 1024

// ErrInvalidCap is returned when the batch size cap is not a positive number of bytes
var ErrInvalidCap = errors.New("batch size cap must be greater than zero")

// Entry is a file waiting to be committed, identified by its path relative to the repository root
type Entry struct {
	Path string
	Size int64
}

// Batch is an ordered group of entries whose total size fits under the cap
type Batch struct {
	Entries []Entry
}

// Paths returns the batch's file paths in order
func (b Batch) Paths() []string {
	paths := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		paths[i] = e.Path
	}
	return paths
}

// Size returns the total size of the batch in bytes
func (b Batch) Size() int64 {
	var total int64
	for _, e := range b.Entries {
		total += e.Size
	}
	return total
}

// Len returns the number of files in the batch
func (b Batch) Len() int {
	return len(b.Entries)
}

// Plan is the result of partitioning a file list
type Plan struct {
	Batches []Batch

	// Skipped holds files larger than the cap, in input order
	Skipped []Entry
}

// FileCount returns the number of files placed in batches
func (p Plan) FileCount() int {
	n := 0
	for _, b := range p.Batches {
		n += b.Len()
	}
	return n
}

// EventKind identifies what happened to an entry during planning
type EventKind int

const (
	// EntryAdded means the entry joined the current batch
	EntryAdded EventKind = iota
	// EntrySkipped means the entry exceeds the cap on its own
	EntrySkipped
	// BatchClosed means the current batch was emitted
	BatchClosed
)

// Event is reported to the planner's observer as planning proceeds
type Event struct {
	Kind  EventKind
	Entry Entry

	// BatchIndex is the index of the batch the event refers to
	BatchIndex int

	// BatchSize is the running size of the current batch after the event
	BatchSize int64
}

// Planner splits files into batches under a size cap.
//
// Files are packed greedily in arrival order: a file that does not fit in the
// current batch closes it and starts the next one. Order is preserved, so the
// result is not the minimum number of batches.
type Planner struct {
	capBytes int64
	observer func(Event)
}

// NewPlanner creates a planner with the given cap in bytes
func NewPlanner(capBytes int64) (*Planner, error) {
	if capBytes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCap, capBytes)
	}
	return &Planner{capBytes: capBytes}, nil
}

// WithObserver registers a callback that receives planning events
func (p *Planner) WithObserver(observer func(Event)) *Planner {
	p.observer = observer
	return p
}

// Cap returns the configured cap in bytes
func (p *Planner) Cap() int64 {
	return p.capBytes
}

// Plan partitions entries into batches. It does not modify entries.
func (p *Planner) Plan(entries []Entry) Plan {
	var plan Plan
	var current []Entry
	var currentSize int64

	closeBatch := func() {
		if len(current) == 0 {
			return
		}
		plan.Batches = append(plan.Batches, Batch{Entries: current})
		p.notify(Event{Kind: BatchClosed, BatchIndex: len(plan.Batches) - 1, BatchSize: currentSize})
		current = nil
		currentSize = 0
	}

	for _, entry := range entries {
		if entry.Size > p.capBytes {
			plan.Skipped = append(plan.Skipped, entry)
			p.notify(Event{Kind: EntrySkipped, Entry: entry, BatchIndex: len(plan.Batches), BatchSize: currentSize})
			continue
		}

		if currentSize+entry.Size > p.capBytes {
			closeBatch()
		}

		current = append(current, entry)
		currentSize += entry.Size
		p.notify(Event{Kind: EntryAdded, Entry: entry, BatchIndex: len(plan.Batches), BatchSize: currentSize})
	}

	closeBatch()
	return plan
}

func (p *Planner) notify(e Event) {
	if p.observer != nil {
		p.observer(e)
	}
}
