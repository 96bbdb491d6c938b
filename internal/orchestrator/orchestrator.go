// Package orchestrator turns a stream of user edits into translation calls.
//
// Edits are debounced; every edit supersedes the previous pending operation,
// and only the most recent operation may publish its outcome. Network calls
// run concurrently, but their completions are applied under the orchestrator's
// lock after a generation check, so a slow stale answer can never overwrite a
// newer one.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/globaltime"
	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/logging"
	"github.com/ufolux/TransPop/internal/translation"
)

// DefaultDebounce is the quiet period between the last edit and the translation call.
const DefaultDebounce = 800 * time.Millisecond

// swapFallbackTarget is the target after swapping away from "auto".
const swapFallbackTarget = "en"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// State is the observable translation state.
type State struct {
	Phase              Phase  `json:"phase"`
	ResultText         string `json:"result_text"`
	ErrorMessage       string `json:"error_message,omitempty"`
	DetectedSourceLang string `json:"detected_source_lang,omitempty"`
	Generation         uint64 `json:"generation"`
}

// Input is the current editor content.
type Input struct {
	Text       string                   `json:"text"`
	SourceLang string                   `json:"source_lang"`
	TargetLang string                   `json:"target_lang"`
	Provider   translation.ProviderKind `json:"provider"`
}

// Translator is the gateway the orchestrator forwards requests to.
type Translator interface {
	Translate(ctx context.Context, req translation.Request) (*translation.Result, error)
}

// HistoryRecorder receives every successful translation. Record runs while the
// orchestrator lock is held and must not call back into the Orchestrator.
type HistoryRecorder interface {
	Record(sourceText, targetText, sourceLang, targetLang string)
}

// Timer is the handle returned by a Scheduler.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	Debounce  time.Duration
	Initial   Input
	History   HistoryRecorder
	Scheduler Scheduler
}

type pendingOperation struct {
	generation uint64
	id         uuid.UUID
	cancelled  bool
	cancel     context.CancelFunc
}

type Orchestrator struct {
	translator Translator
	history    HistoryRecorder
	scheduler  Scheduler
	debounce   time.Duration
	logger     zerolog.Logger

	mu          sync.Mutex
	input       Input
	state       State
	generation  uint64
	pending     *pendingOperation
	timer       Timer
	subscribers map[int]chan State
	nextSubID   int
	closed      bool

	inflight sync.WaitGroup
}

func New(translator Translator, logger zerolog.Logger, opts Options) *Orchestrator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = realScheduler{}
	}
	initial := opts.Initial
	if initial.SourceLang == "" {
		initial.SourceLang = language.AutoDetect
	}
	if initial.TargetLang == "" {
		initial.TargetLang = swapFallbackTarget
	}

	return &Orchestrator{
		translator:  translator,
		history:     opts.History,
		scheduler:   scheduler,
		debounce:    debounce,
		logger:      logging.Component(logger, "orchestrator"),
		input:       initial,
		state:       State{Phase: PhaseIdle},
		subscribers: make(map[int]chan State),
	}
}

func (o *Orchestrator) SetText(text string) {
	o.update("text", func(in *Input) { in.Text = text })
}

func (o *Orchestrator) SetSourceLang(code string) {
	o.update("source_lang", func(in *Input) { in.SourceLang = code })
}

func (o *Orchestrator) SetTargetLang(code string) {
	o.update("target_lang", func(in *Input) { in.TargetLang = code })
}

func (o *Orchestrator) SetProvider(kind translation.ProviderKind) {
	o.update("provider", func(in *Input) { in.Provider = kind })
}

// Edit applies mutate to the input under the lock as one trigger.
func (o *Orchestrator) Edit(mutate func(*Input)) {
	o.update("edit", mutate)
}

// Update replaces the whole input as one trigger.
func (o *Orchestrator) Update(next Input) {
	o.update("input", func(in *Input) { *in = next })
}

// Swap exchanges the languages and the source and result texts. Swapping away
// from "auto" translates back into English.
func (o *Orchestrator) Swap() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	in := &o.input
	if in.SourceLang == language.AutoDetect {
		in.SourceLang, in.TargetLang = in.TargetLang, swapFallbackTarget
	} else {
		in.SourceLang, in.TargetLang = in.TargetLang, in.SourceLang
	}

	previousText := in.Text
	in.Text = o.state.ResultText
	o.state.ResultText = previousText
	o.scheduleLocked("swap")
}

// Input returns the current editor content.
func (o *Orchestrator) Input() Input {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// Snapshot returns the current observable state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe returns a channel that always holds the latest state; intermediate
// states are dropped for slow readers. The returned func unsubscribes.
func (o *Orchestrator) Subscribe() (<-chan State, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan State, 1)
	if o.closed {
		close(ch)
		return ch, func() {}
	}
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = ch
	ch <- o.state

	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subscribers[id]; ok {
			delete(o.subscribers, id)
			close(sub)
		}
	}
}

// Close cancels outstanding work and closes every subscription.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.supersedeLocked()
	for id, ch := range o.subscribers {
		delete(o.subscribers, id)
		close(ch)
	}
	o.mu.Unlock()

	o.inflight.Wait()
}

func (o *Orchestrator) update(reason string, mutate func(*Input)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	mutate(&o.input)
	o.scheduleLocked(reason)
}

// scheduleLocked starts a new debounce cycle for the current input.
func (o *Orchestrator) scheduleLocked(reason string) {
	o.supersedeLocked()

	if strings.TrimSpace(o.input.Text) == "" {
		o.setStateLocked(State{Phase: PhaseIdle, Generation: o.generation})
		o.logger.Debug().Str("reason", reason).Msg("input cleared")
		return
	}

	o.generation++
	op := &pendingOperation{generation: o.generation, id: uuid.New()}
	o.pending = op
	o.setStateLocked(State{
		Phase:      PhasePending,
		ResultText: o.state.ResultText,
		Generation: op.generation,
	})
	o.timer = o.scheduler.AfterFunc(o.debounce, func() { o.fire(op) })

	o.logger.Debug().
		Str("reason", reason).
		Uint64("generation", op.generation).
		Str("operation_id", op.id.String()).
		Msg("translation scheduled")
}

// supersedeLocked cancels the current pending operation, if any.
func (o *Orchestrator) supersedeLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.pending == nil {
		return
	}
	o.pending.cancelled = true
	if o.pending.cancel != nil {
		o.pending.cancel()
	}
	o.pending = nil
}

func (o *Orchestrator) fire(op *pendingOperation) {
	o.mu.Lock()
	if op.cancelled || o.closed {
		o.mu.Unlock()
		return
	}
	o.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	op.cancel = cancel
	req := translation.Request{
		Text:       o.input.Text,
		SourceLang: o.input.SourceLang,
		TargetLang: o.input.TargetLang,
		Provider:   o.input.Provider,
	}
	o.inflight.Add(1)
	o.mu.Unlock()

	go o.run(ctx, op, req)
}

func (o *Orchestrator) run(ctx context.Context, op *pendingOperation, req translation.Request) {
	defer o.inflight.Done()
	defer op.cancel()

	started := globaltime.Now()
	res, err := o.translator.Translate(ctx, req)

	o.mu.Lock()
	if op.cancelled || o.pending != op {
		o.mu.Unlock()
		o.logger.Debug().
			Uint64("generation", op.generation).
			Str("operation_id", op.id.String()).
			Msg("discarding superseded translation")
		return
	}
	o.pending = nil

	if err != nil {
		o.setStateLocked(State{
			Phase:        PhaseFailed,
			ErrorMessage: errorMessage(err),
			Generation:   op.generation,
		})
		o.mu.Unlock()
		o.logger.Warn().
			Err(err).
			Uint64("generation", op.generation).
			Str("operation_id", op.id.String()).
			Str("provider", req.Provider.String()).
			Dur("latency", globaltime.Since(started)).
			Msg("translation failed")
		return
	}

	o.setStateLocked(State{
		Phase:              PhaseSuccess,
		ResultText:         res.Text,
		DetectedSourceLang: res.DetectedSourceLang,
		Generation:         op.generation,
	})
	// History order follows the order results are applied.
	if o.history != nil {
		o.history.Record(req.Text, res.Text, res.DetectedSourceLang, req.TargetLang)
	}
	o.mu.Unlock()

	o.logger.Debug().
		Uint64("generation", op.generation).
		Str("operation_id", op.id.String()).
		Dur("latency", globaltime.Since(started)).
		Msg("translation applied")
}

func (o *Orchestrator) setStateLocked(next State) {
	o.state = next
	for _, ch := range o.subscribers {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}
