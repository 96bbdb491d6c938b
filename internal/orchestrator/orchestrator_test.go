package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/translation"
)

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := &fakeTimer{f: f}
	s.timers = append(s.timers, timer)
	s.delays = append(s.delays, d)
	return timer
}

// fireAll runs every timer that is still armed and reports how many fired.
func (s *fakeScheduler) fireAll() int {
	s.mu.Lock()
	timers := append([]*fakeTimer(nil), s.timers...)
	s.mu.Unlock()

	fired := 0
	for _, timer := range timers {
		timer.mu.Lock()
		armed := !timer.stopped && !timer.fired
		timer.fired = true
		timer.mu.Unlock()
		if armed {
			timer.f()
			fired++
		}
	}
	return fired
}

type stubTranslator struct {
	mu        sync.Mutex
	calls     []translation.Request
	translate func(ctx context.Context, req translation.Request) (*translation.Result, error)
}

func (s *stubTranslator) Translate(ctx context.Context, req translation.Request) (*translation.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	return s.translate(ctx, req)
}

func (s *stubTranslator) requests() []translation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]translation.Request(nil), s.calls...)
}

type historyEntry struct {
	sourceText, targetText, sourceLang, targetLang string
}

type stubHistory struct {
	mu      sync.Mutex
	entries []historyEntry
}

func (h *stubHistory) Record(sourceText, targetText, sourceLang, targetLang string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, historyEntry{sourceText, targetText, sourceLang, targetLang})
}

func (h *stubHistory) all() []historyEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]historyEntry(nil), h.entries...)
}

func echoTranslator() *stubTranslator {
	return &stubTranslator{translate: func(_ context.Context, req translation.Request) (*translation.Result, error) {
		return &translation.Result{Text: "T(" + req.Text + ")", DetectedSourceLang: "en"}, nil
	}}
}

func newTestOrchestrator(translator Translator, history HistoryRecorder) (*Orchestrator, *fakeScheduler) {
	scheduler := &fakeScheduler{}
	o := New(translator, zerolog.Nop(), Options{
		Scheduler: scheduler,
		History:   history,
		Initial:   Input{SourceLang: "auto", TargetLang: "fr", Provider: translation.ProviderFreeEndpoint},
	})
	return o, scheduler
}

func TestOrchestrator_CoalescesBurstIntoOneCall(t *testing.T) {
	t.Parallel()

	translator := echoTranslator()
	o, scheduler := newTestOrchestrator(translator, nil)
	defer o.Close()

	for _, text := range []string{"h", "he", "hel", "hello"} {
		o.SetText(text)
	}
	o.SetTargetLang("de")

	if got := o.Snapshot().Phase; got != PhasePending {
		t.Fatalf("expected pending phase, got %q", got)
	}
	if fired := scheduler.fireAll(); fired != 1 {
		t.Fatalf("expected exactly one armed timer, got %d", fired)
	}
	o.inflight.Wait()

	calls := translator.requests()
	if len(calls) != 1 {
		t.Fatalf("expected one gateway call, got %d", len(calls))
	}
	if calls[0].Text != "hello" || calls[0].TargetLang != "de" || calls[0].SourceLang != "auto" {
		t.Fatalf("unexpected request: %+v", calls[0])
	}
	state := o.Snapshot()
	if state.Phase != PhaseSuccess || state.ResultText != "T(hello)" {
		t.Fatalf("unexpected final state: %+v", state)
	}
	if state.DetectedSourceLang != "en" {
		t.Fatalf("expected detected language en, got %q", state.DetectedSourceLang)
	}
}

func TestOrchestrator_UsesDefaultDebounce(t *testing.T) {
	t.Parallel()

	o, scheduler := newTestOrchestrator(echoTranslator(), nil)
	defer o.Close()

	o.SetText("hi")
	if len(scheduler.delays) != 1 || scheduler.delays[0] != DefaultDebounce {
		t.Fatalf("expected one timer with %s, got %v", DefaultDebounce, scheduler.delays)
	}
}

func TestOrchestrator_StaleCompletionIsDiscarded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	firstCtx := make(chan context.Context, 1)
	translator := &stubTranslator{translate: func(ctx context.Context, req translation.Request) (*translation.Result, error) {
		if req.Text == "first" {
			firstCtx <- ctx
			<-release
			return &translation.Result{Text: "FIRST"}, nil
		}
		return &translation.Result{Text: "SECOND"}, nil
	}}
	history := &stubHistory{}
	o, scheduler := newTestOrchestrator(translator, history)
	defer o.Close()

	o.SetText("first")
	scheduler.fireAll()
	ctx := <-firstCtx

	o.SetText("second")
	if ctx.Err() == nil {
		t.Fatalf("expected superseded call context to be cancelled")
	}
	scheduler.fireAll()

	close(release)
	o.inflight.Wait()

	state := o.Snapshot()
	if state.Phase != PhaseSuccess || state.ResultText != "SECOND" {
		t.Fatalf("expected newest result to win, got %+v", state)
	}
	entries := history.all()
	if len(entries) != 1 || entries[0].targetText != "SECOND" {
		t.Fatalf("expected only the newest result in history, got %+v", entries)
	}
}

func TestOrchestrator_EmptyTextGoesIdleWithoutCall(t *testing.T) {
	t.Parallel()

	translator := echoTranslator()
	o, scheduler := newTestOrchestrator(translator, nil)
	defer o.Close()

	o.SetText("hello")
	o.SetText("   ")

	if fired := scheduler.fireAll(); fired != 0 {
		t.Fatalf("expected no armed timers, got %d", fired)
	}
	if calls := translator.requests(); len(calls) != 0 {
		t.Fatalf("expected no gateway calls, got %d", len(calls))
	}
	state := o.Snapshot()
	if state.Phase != PhaseIdle || state.ResultText != "" {
		t.Fatalf("expected idle state with empty result, got %+v", state)
	}
}

func TestOrchestrator_FailurePublishesMessageWithoutRetry(t *testing.T) {
	t.Parallel()

	translator := &stubTranslator{translate: func(context.Context, translation.Request) (*translation.Result, error) {
		return nil, &translation.RejectedError{Provider: translation.ProviderChatCompletion, Message: "Invalid API key"}
	}}
	history := &stubHistory{}
	o, scheduler := newTestOrchestrator(translator, history)
	defer o.Close()

	o.SetText("hello")
	scheduler.fireAll()
	o.inflight.Wait()

	state := o.Snapshot()
	if state.Phase != PhaseFailed || state.ErrorMessage != "Invalid API key" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if fired := scheduler.fireAll(); fired != 0 {
		t.Fatalf("expected no retry timer, got %d", fired)
	}
	if calls := translator.requests(); len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if entries := history.all(); len(entries) != 0 {
		t.Fatalf("expected no history on failure, got %+v", entries)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{&translation.RejectedError{Message: "quota exceeded"}, "quota exceeded"},
		{translation.ErrNetwork, "Translation failed: could not reach the translation service"},
		{translation.ErrSession, "Translation failed: could not start a translator session"},
		{translation.ErrResponseParse, "Translation failed: unexpected response from the translation service"},
		{errors.New("boom"), "Translation failed: boom"},
	}
	for _, tc := range cases {
		if got := errorMessage(tc.err); got != tc.want {
			t.Fatalf("errorMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestOrchestrator_SwapExchangesLanguagesAndText(t *testing.T) {
	t.Parallel()

	translator := echoTranslator()
	o, scheduler := newTestOrchestrator(translator, nil)
	defer o.Close()

	o.Update(Input{Text: "hello", SourceLang: "de", TargetLang: "fr"})
	scheduler.fireAll()
	o.inflight.Wait()

	o.Swap()
	in := o.Input()
	if in.SourceLang != "fr" || in.TargetLang != "de" || in.Text != "T(hello)" {
		t.Fatalf("unexpected input after swap: %+v", in)
	}
	if state := o.Snapshot(); state.Phase != PhasePending || state.ResultText != "hello" {
		t.Fatalf("expected pending state holding previous source text, got %+v", state)
	}

	scheduler.fireAll()
	o.inflight.Wait()
	calls := translator.requests()
	last := calls[len(calls)-1]
	if last.Text != "T(hello)" || last.SourceLang != "fr" || last.TargetLang != "de" {
		t.Fatalf("unexpected request after swap: %+v", last)
	}
}

func TestOrchestrator_SwapFromAutoTargetsEnglish(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(echoTranslator(), nil)
	defer o.Close()

	o.SetTargetLang("ja")
	o.Swap()
	in := o.Input()
	if in.SourceLang != "ja" || in.TargetLang != "en" {
		t.Fatalf("unexpected languages after swap: %+v", in)
	}
}

func TestOrchestrator_RecordsHistoryOnSuccess(t *testing.T) {
	t.Parallel()

	history := &stubHistory{}
	o, scheduler := newTestOrchestrator(echoTranslator(), history)
	defer o.Close()

	o.SetText("hello")
	scheduler.fireAll()
	o.inflight.Wait()

	entries := history.all()
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	want := historyEntry{"hello", "T(hello)", "en", "fr"}
	if entries[0] != want {
		t.Fatalf("history entry = %+v, want %+v", entries[0], want)
	}
}

// orderedHistory captures the applied generation for each Record call.
type orderedHistory struct {
	t           *testing.T
	o           *Orchestrator
	generations []uint64
}

func (h *orderedHistory) Record(_, _, _, _ string) {
	if h.o.mu.TryLock() {
		h.o.mu.Unlock()
		h.t.Errorf("history recorded after the orchestrator lock was released")
	}
	h.generations = append(h.generations, h.o.state.Generation)
}

func TestOrchestrator_HistoryFollowsApplyOrder(t *testing.T) {
	t.Parallel()

	history := &orderedHistory{t: t}
	o, scheduler := newTestOrchestrator(echoTranslator(), history)
	history.o = o
	defer o.Close()

	for _, text := range []string{"first", "second", "third"} {
		o.SetText(text)
		scheduler.fireAll()
		o.inflight.Wait()
	}

	o.mu.Lock()
	got := append([]uint64(nil), history.generations...)
	o.mu.Unlock()
	if len(got) != 3 {
		t.Fatalf("expected three history entries, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("history out of apply order: %v", got)
		}
	}
}

func TestOrchestrator_SubscribeDeliversLatestState(t *testing.T) {
	t.Parallel()

	o, scheduler := newTestOrchestrator(echoTranslator(), nil)

	updates, unsubscribe := o.Subscribe()
	defer unsubscribe()

	if initial := <-updates; initial.Phase != PhaseIdle {
		t.Fatalf("expected initial idle state, got %+v", initial)
	}

	o.SetText("a")
	o.SetText("ab")
	scheduler.fireAll()
	o.inflight.Wait()

	latest := <-updates
	if latest.Phase != PhaseSuccess || latest.ResultText != "T(ab)" {
		t.Fatalf("expected latest state to be success, got %+v", latest)
	}

	o.Close()
	if _, ok := <-updates; ok {
		t.Fatalf("expected subscription to close with the orchestrator")
	}
}

func TestOrchestrator_RealSchedulerDebounces(t *testing.T) {
	t.Parallel()

	translator := echoTranslator()
	o := New(translator, zerolog.Nop(), Options{Debounce: 20 * time.Millisecond})
	defer o.Close()

	updates, unsubscribe := o.Subscribe()
	defer unsubscribe()

	o.SetText("one")
	o.SetText("two")
	o.SetText("three")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-updates:
			if state.Phase != PhaseSuccess {
				continue
			}
			if state.ResultText != "T(three)" {
				t.Fatalf("unexpected result %q", state.ResultText)
			}
			if calls := translator.requests(); len(calls) != 1 {
				t.Fatalf("expected one call, got %d", len(calls))
			}
			return
		case <-deadline:
			t.Fatalf("timed out waiting for translation")
		}
	}
}

func TestOrchestrator_EditIsOneTrigger(t *testing.T) {
	t.Parallel()

	translator := echoTranslator()
	o, scheduler := newTestOrchestrator(translator, nil)
	defer o.Close()

	o.Edit(func(in *Input) {
		in.Text = "hello"
		in.TargetLang = "ja"
		in.Provider = translation.ProviderScrapedWeb
	})
	if state := o.Snapshot(); state.Generation != 1 {
		t.Fatalf("expected a single generation, got %d", state.Generation)
	}

	scheduler.fireAll()
	o.inflight.Wait()
	calls := translator.requests()
	if len(calls) != 1 || calls[0].Provider != translation.ProviderScrapedWeb || calls[0].TargetLang != "ja" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}
