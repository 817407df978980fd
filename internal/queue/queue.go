// Package queue implements the priority command queue and its
// single-in-flight dispatcher. At most one command is ever Processing;
// every other pending command waits its turn in priority order, and a
// command that fails within its retry budget is re-inserted at the tail
// of its priority band rather than losing its place entirely.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nattery/edge-bridge/internal/accessor"
	"github.com/nattery/edge-bridge/internal/errs"
)

// Config bundles the queue-wide defaults.
type Config struct {
	MaxQueueSize       int
	DefaultTimeoutSecs int
	DefaultMaxAttempts int
}

// Queue is the priority pending sequence plus the single Processing slot
// plus the full command history.
type Queue struct {
	cfg Config

	mu      sync.Mutex
	pending []*Command
	current *Command
	history map[string]*Command

	accessor *accessor.Accessor
	wake     chan struct{}

	onResponse ResponseFunc
}

// ResponseFunc is invoked once a dispatched command reaches a terminal
// outcome, carrying enough to populate the commands/response channel:
// command id, success, result, and error string. The
// coordinator binds this to the publish sink at construction time; it is
// nil-safe so tests can build a Queue without one.
type ResponseFunc func(id string, success bool, result any, errMsg string)

// New builds a Queue bound to the given Accessor, which the dispatch
// loop uses to actually execute register reads and writes.
func New(cfg Config, a *accessor.Accessor) *Queue {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.DefaultTimeoutSecs <= 0 {
		cfg.DefaultTimeoutSecs = 30
	}
	if cfg.DefaultMaxAttempts <= 0 {
		cfg.DefaultMaxAttempts = 3
	}
	return &Queue{
		cfg:      cfg,
		history:  make(map[string]*Command),
		accessor: a,
		wake:     make(chan struct{}, 1),
	}
}

// OnResponse registers the callback fired on every terminal command
// outcome (Completed, Failed, TimedOut). Call once, before Run starts.
func (q *Queue) OnResponse(fn ResponseFunc) {
	q.onResponse = fn
}

// Submit enqueues a command built from spec, assigning an ID if the
// caller didn't supply one, and returns that ID.
func (q *Queue) Submit(spec CommandSpec) (string, error) {
	id := spec.CommandID
	if id == "" {
		id = uuid.NewString()
	}

	timeout := spec.TimeoutSecs
	if timeout <= 0 {
		timeout = q.cfg.DefaultTimeoutSecs
	}

	cmd := &Command{
		ID:           id,
		Kind:         Kind(spec.CommandType),
		Args:         spec.toArgs(),
		Priority:     ParsePriority(spec.Priority),
		TimeoutSecs:  timeout,
		MaxAttempts:  q.cfg.DefaultMaxAttempts,
		Status:       Pending,
		CreatedAt:    time.Now().UTC(),
		ResponseSink: spec.ResponseTopic,
	}

	q.mu.Lock()
	if len(q.pending) >= q.cfg.MaxQueueSize {
		q.mu.Unlock()
		return "", errs.ErrQueueFull
	}
	q.insertByPriorityLocked(cmd)
	q.history[id] = cmd
	q.mu.Unlock()

	q.notify()
	return id, nil
}

// insertByPriorityLocked inserts cmd at the first position whose
// existing element has strictly lower priority: a new Critical goes
// before all non-Critical but after any existing Critical. Ties retain
// insertion order (FIFO within a band). Callers must hold q.mu.
func (q *Queue) insertByPriorityLocked(cmd *Command) {
	idx := len(q.pending)
	for i, existing := range q.pending {
		if cmd.Priority > existing.Priority {
			idx = i
			break
		}
	}
	q.pending = append(q.pending, nil)
	copy(q.pending[idx+1:], q.pending[idx:])
	q.pending[idx] = cmd
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Cancel removes a Pending command from the queue and marks it
// Cancelled. A Processing command cannot be cancelled this way.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, cmd := range q.pending {
		if cmd.ID == id {
			cmd.Status = Cancelled
			cmd.Error = errs.ErrCancelled.Error()
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Clear marks every Pending command Cancelled and empties the queue. It
// does not touch a Processing command.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.pending)
	for _, cmd := range q.pending {
		cmd.Status = Cancelled
		cmd.Error = errs.ErrCancelled.Error()
	}
	q.pending = nil
	return n
}

// StatusOf returns a snapshot of the command with the given ID, if known.
func (q *Queue) StatusOf(id string) (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cmd, ok := q.history[id]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(cmd), true
}

// QueueStatus is the aggregate view returned by QueueStatus().
type QueueStatus struct {
	PendingCount  int
	CurrentID     string
	StatusCounts  map[Status]int
	TotalCommands int
}

// QueueStatus returns aggregate counts keyed by status plus the current
// command id, if any.
func (q *Queue) QueueStatus() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[Status]int)
	for _, cmd := range q.history {
		counts[cmd.Status]++
	}

	currentID := ""
	if q.current != nil {
		currentID = q.current.ID
	}

	return QueueStatus{
		PendingCount:  len(q.pending),
		CurrentID:     currentID,
		StatusCounts:  counts,
		TotalCommands: len(q.history),
	}
}

// Run drives the dispatch loop until ctx is cancelled: pop the highest
// priority pending command, mark it Processing, race its handler against
// its timeout, and resolve to Completed, re-queued-Pending, Failed, or
// TimedOut. Only one command is ever in flight; the loop is single
// threaded by construction, not by locking around execution.
func (q *Queue) Run(ctx context.Context) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		case <-ticker.C:
		}

		for {
			cmd := q.popNext()
			if cmd == nil {
				break
			}
			q.dispatch(ctx, cmd)
		}
	}
}

// popNext pops the head of the pending sequence, marks it Processing,
// and returns it. Returns nil if the pending sequence is empty.
func (q *Queue) popNext() *Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}

	cmd := q.pending[0]
	q.pending = q.pending[1:]

	cmd.Status = Processing
	cmd.Attempts++
	cmd.LastAttemptAt = time.Now().UTC()
	q.current = cmd

	return cmd
}

// dispatch races the command's handler against its timeout and resolves
// the outcome. The loser of the race is abandoned: the execution
// goroutine's own suspension points (Transport calls) are each bounded,
// so a cancelled dispatch between calls never leaves the bus lock held.
func (q *Queue) dispatch(ctx context.Context, cmd *Command) {
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	resultCh := make(chan outcome, 1)

	go func() {
		result, err := q.execute(execCtx, cmd)
		resultCh <- outcome{result: result, err: err}
	}()

	timer := time.NewTimer(time.Duration(cmd.TimeoutSecs) * time.Second)
	defer timer.Stop()

	select {
	case out := <-resultCh:
		if out.err == nil {
			q.complete(cmd, out.result)
		} else {
			q.fail(cmd, out.err)
		}
	case <-timer.C:
		cancel()
		q.timeout(cmd)
	case <-ctx.Done():
		cancel()
		q.abandon(cmd)
	}
}

func (q *Queue) complete(cmd *Command, result any) {
	q.mu.Lock()
	cmd.Status = Completed
	cmd.Result = result
	cmd.Error = ""
	q.current = nil
	q.mu.Unlock()

	q.notifyResponse(cmd, true, result, "")
}

func (q *Queue) fail(cmd *Command, err error) {
	q.mu.Lock()
	cmd.Error = err.Error()

	terminal := cmd.Attempts >= cmd.MaxAttempts
	if terminal {
		cmd.Status = Failed
	} else {
		cmd.Status = Pending
		q.insertByPriorityLocked(cmd)
	}
	q.current = nil
	q.mu.Unlock()

	if terminal {
		q.notifyResponse(cmd, false, nil, cmd.Error)
	}
}

func (q *Queue) timeout(cmd *Command) {
	q.mu.Lock()
	cmd.Status = TimedOut
	cmd.Error = (&errs.TimeoutError{Seconds: cmd.TimeoutSecs}).Error()
	q.current = nil
	q.mu.Unlock()

	q.notifyResponse(cmd, false, nil, cmd.Error)
}

// notifyResponse fires the response callback, if one is registered, with
// the command's id. The command's ResponseSink (its response_topic) is
// not passed to the callback, so every response goes out on the publish
// sink's commands/response channel.
func (q *Queue) notifyResponse(cmd *Command, success bool, result any, errMsg string) {
	if q.onResponse != nil {
		q.onResponse(cmd.ID, success, result, errMsg)
	}
}

// abandon resolves cmd when the dispatch loop's own context is cancelled
// mid-execution (process shutdown), which is not the command's own
// per-command timeout firing.
func (q *Queue) abandon(cmd *Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cmd.Status = Cancelled
	cmd.Error = errs.ErrCancelled.Error()
	q.current = nil
}
