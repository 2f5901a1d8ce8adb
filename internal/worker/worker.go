// file: internal/worker/worker.go
// version: 1.2.0
// guid: 6d7e8f9a-0b1c-2d3e-4f5a-6b7c8d9e0f1a

// Package worker runs the parse pipeline as a single non-interactive batch
// job on a background goroutine and relays coarse-grained progress to the
// caller. The transport is four message shapes: the parse request going
// in, and progress / completed / failed notifications coming back on a
// channel. Only one job is in flight at a time; canceling the context
// terminates the whole job and discards partial work.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cratestats/cratestats/internal/metrics"
	"github.com/cratestats/cratestats/internal/models"
	"github.com/cratestats/cratestats/internal/rekordbox"
	"github.com/cratestats/cratestats/internal/validate"
	"github.com/cratestats/cratestats/internal/xmldoc"
)

// MessageType identifies a notification from a running parse job
type MessageType string

const (
	MessageProgress  MessageType = "progress"
	MessageCompleted MessageType = "completed"
	MessageFailed    MessageType = "failed"
)

// ParseRequest carries the raw file into the job. Exactly one of Path or
// Data must be set; Data wins when both are present.
type ParseRequest struct {
	Path string
	Data []byte
}

// Message is one notification from the job. Progress messages carry
// Percent and Stage; the terminal message carries either Library or Error.
type Message struct {
	Type    MessageType     `json:"type"`
	Percent int             `json:"percent,omitempty"`
	Stage   string          `json:"stage,omitempty"`
	Library *models.Library `json:"library,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ErrBusy is returned when a parse job is already in flight
var ErrBusy = errors.New("a parse job is already running")

// Runner executes parse jobs one at a time
type Runner struct {
	mu      sync.Mutex
	running bool
}

// NewRunner creates an idle Runner
func NewRunner() *Runner {
	return &Runner{}
}

// Running reports whether a job is currently in flight
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start launches a parse job in the background. The returned channel
// receives progress messages followed by exactly one terminal message,
// then closes. A second Start while a job is running returns ErrBusy.
func (r *Runner) Start(ctx context.Context, req ParseRequest) (<-chan Message, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.running = true
	r.mu.Unlock()

	out := make(chan Message, 16)
	go r.run(ctx, req, out)
	return out, nil
}

func (r *Runner) run(ctx context.Context, req ParseRequest, out chan<- Message) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		close(out)
	}()

	start := time.Now()
	metrics.IncParseStarted()

	parser := rekordbox.NewParser()
	parser.Progress = func(percent int, stage string) {
		send(ctx, out, Message{Type: MessageProgress, Percent: percent, Stage: stage})
	}

	var lib *models.Library
	var err error
	if len(req.Data) > 0 {
		lib, err = parser.Parse(req.Data)
	} else {
		lib, err = parser.ParseFile(req.Path)
	}

	metrics.ObserveParseDuration(time.Since(start))

	if ctx.Err() != nil {
		// The execution context was torn down; partial work is discarded
		// and no terminal message is deliverable.
		metrics.IncParseFailed("canceled")
		log.Printf("parse job canceled after %v", time.Since(start))
		return
	}

	if err != nil {
		metrics.IncParseFailed(errorKind(err))
		log.Printf("parse job failed: %v", err)
		send(ctx, out, Message{Type: MessageFailed, Error: err.Error()})
		return
	}

	metrics.IncParseCompleted()
	metrics.SetTracks(len(lib.Tracks))
	metrics.SetPlaylists(len(lib.Playlists))
	log.Printf("parse job completed: %d tracks, %d playlists in %v",
		len(lib.Tracks), len(lib.Playlists), time.Since(start))
	send(ctx, out, Message{Type: MessageCompleted, Library: lib})
}

func send(ctx context.Context, out chan<- Message, msg Message) {
	select {
	case out <- msg:
	case <-ctx.Done():
	}
}

// errorKind maps a pipeline error to a metrics label
func errorKind(err error) string {
	var structural *xmldoc.StructuralError
	var validation *validate.ValidationError
	switch {
	case errors.As(err, &structural):
		return "structural"
	case errors.As(err, &validation):
		return "validation"
	default:
		return "io"
	}
}
