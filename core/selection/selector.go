// Package selection runs predicates over whole tables. A Selector evaluates a
// predicate against every row of a table.Sheet, collects the matching row
// indexes, logs the run and publishes lifecycle events to subscribers.
package selection

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-rowsel/core/predicate"
	"github.com/asaidimu/go-rowsel/core/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Selector.
type Options struct {
	EmitEvents bool // Publish start/success/failed events for every Select call.
	MaxRows    int  // Stop collecting after this many matches. Zero means no limit.
}

// DefaultOptions returns the options used when NewSelector is given nil.
func DefaultOptions() *Options {
	return &Options{
		EmitEvents: true,
		MaxRows:    0,
	}
}

// Selection is the result of one Select call.
type Selection struct {
	ID        string // Run identifier, shared with the events of the run.
	Rows      []int  // Matching row indexes in ascending order.
	Scanned   int    // Number of rows evaluated.
	Truncated bool   // True if MaxRows stopped the run early.
}

// Selector evaluates predicates over tables.
type Selector struct {
	logger        *zap.Logger
	options       *Options
	bus           *events.TypedEventBus[SelectionEvent]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewSelector creates a Selector. A nil logger disables logging and nil
// options fall back to DefaultOptions.
func NewSelector(logger *zap.Logger, options *Options) (*Selector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}
	if options.MaxRows < 0 {
		return nil, fmt.Errorf("MaxRows cannot be negative, got %d", options.MaxRows)
	}

	bus, err := events.NewTypedEventBus[SelectionEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	return &Selector{
		logger:        logger,
		options:       options,
		bus:           bus,
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

// Select evaluates p against every row of sheet and returns the rows it
// selects. ctx is checked between rows. The first evaluation error aborts the
// run; it is wrapped with the row index and remains reachable with errors.As.
func (s *Selector) Select(ctx context.Context, sheet table.Sheet, p predicate.Predicate) (*Selection, error) {
	if p == nil {
		return nil, predicate.ErrNilPredicate
	}

	runID := uuid.New().String()
	name := describe(p)
	start := time.Now()
	s.emit(newEvent(SelectionStart, runID, name, 0, 0, nil, start))

	sel, err := s.run(ctx, sheet, p, runID)
	if err != nil {
		scanned, matched := 0, 0
		if sel != nil {
			scanned, matched = sel.Scanned, len(sel.Rows)
		}
		s.logger.Error("Selection failed",
			zap.String("run", runID),
			zap.String("predicate", name),
			zap.Int("scanned", scanned),
			zap.Error(err))
		s.emit(newEvent(SelectionFailed, runID, name, scanned, matched, err, start))
		return nil, err
	}

	s.logger.Debug("Selection completed",
		zap.String("run", runID),
		zap.String("predicate", name),
		zap.Int("scanned", sel.Scanned),
		zap.Int("matched", len(sel.Rows)),
		zap.Bool("truncated", sel.Truncated))
	s.emit(newEvent(SelectionSuccess, runID, name, sel.Scanned, len(sel.Rows), nil, start))
	return sel, nil
}

// run does the row loop. On failure it still returns the partial selection so
// the caller can report progress.
func (s *Selector) run(ctx context.Context, sheet table.Sheet, p predicate.Predicate, runID string) (*Selection, error) {
	n, err := sheet.NumRows()
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	sel := &Selection{ID: runID, Rows: []int{}}
	for row := 0; row < n; row++ {
		if err := ctx.Err(); err != nil {
			return sel, err
		}
		ok, err := p.Evaluate(sheet, row)
		sel.Scanned++
		if err != nil {
			return sel, fmt.Errorf("error evaluating predicate for row %d: %w", row, err)
		}
		if !ok {
			continue
		}
		sel.Rows = append(sel.Rows, row)
		if s.options.MaxRows > 0 && len(sel.Rows) >= s.options.MaxRows {
			sel.Truncated = row < n-1
			break
		}
	}
	return sel, nil
}

// Match evaluates p against a single row. It publishes no events.
func (s *Selector) Match(ctx context.Context, t table.Table, p predicate.Predicate, row int) (bool, error) {
	if p == nil {
		return false, predicate.ErrNilPredicate
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.Evaluate(t, row)
}

// Subscribe registers cb for events of the given type and returns the
// subscription id.
func (s *Selector) Subscribe(event EventType, cb EventCallbackFunction) string {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	unsubscribe := s.bus.Subscribe(string(event), func(ctx context.Context, e SelectionEvent) error {
		return cb(ctx, e)
	})
	id := uuid.New().String()
	s.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       event,
		Unsubscribe: unsubscribe,
	}
	s.logger.Info("Registered subscription", zap.String("id", id), zap.String("event", string(event)))
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (s *Selector) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	info := s.subscriptions[id]
	if info != nil {
		info.Unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions returns the registered subscriptions ordered by id.
func (s *Selector) Subscriptions() []SubscriptionInfo {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	infos := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, info := range s.subscriptions {
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (s *Selector) emit(event SelectionEvent) {
	if !s.options.EmitEvents || s.bus == nil {
		return
	}
	s.bus.Emit(string(event.Type), event)
}

// Print writes the selected rows of sheet to w, one row per line with cells
// separated by single spaces.
func Print(w io.Writer, sheet table.Sheet, sel *Selection) error {
	if sel == nil {
		return nil
	}
	names, err := sheet.ColumnNames()
	if err != nil {
		return fmt.Errorf("failed to read column names: %w", err)
	}
	refs := make([]table.ColumnRef, len(names))
	for i, name := range names {
		ref, err := sheet.ColumnByName(name)
		if err != nil {
			return err
		}
		refs[i] = ref
	}

	cells := make([]string, len(refs))
	for _, row := range sel.Rows {
		for i, ref := range refs {
			v, err := sheet.CellValue(row, ref)
			if err != nil {
				return err
			}
			cells[i] = v
		}
		if _, err := io.WriteString(w, strings.Join(cells, " ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func describe(p predicate.Predicate) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
