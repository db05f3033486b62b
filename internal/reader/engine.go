// Package reader implements the RSVP presentation engine: it advances
// through a word sequence at a computed cadence and reports word boundaries,
// progress and completion to observer callbacks.
//
// The engine owns at most one outstanding timer. Every transition that could
// invalidate a pending advance (pause, reset, seek, destroy) cancels the
// timer and bumps a generation counter, so a timer that already fired but
// has not yet run is ignored. Callbacks are invoked synchronously and in
// order, never while the engine lock is held.
package reader

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Speed and pause bounds.
const (
	MinWPM = 200
	MaxWPM = 1000

	MinPunctuationPause = 0
	MaxPunctuationPause = 500 * time.Millisecond

	DefaultWPM              = 300
	DefaultPunctuationPause = 200 * time.Millisecond
)

// Callbacks receive engine notifications. Nil members are ignored.
type Callbacks struct {
	// OnWordChange fires when a word is presented (or cleared on reset).
	OnWordChange func(word string, index int)
	// OnProgress fires with percentage in [0,100], the current word number
	// and the total word count.
	OnProgress func(percent float64, current, total int)
	// OnComplete fires once when the last word has been presented.
	OnComplete func()
}

// Options configure a new Engine. Zero values fall back to defaults.
type Options struct {
	WPM              int
	PunctuationPause time.Duration
	Callbacks        Callbacks
}

// afterFunc is a seam for testing timer scheduling.
var afterFunc = time.AfterFunc

// Engine presents one word sequence. It is safe for use from multiple
// goroutines, although the intended model is a single cooperative caller
// plus the internal timer.
type Engine struct {
	mu         sync.Mutex
	words      []string
	index      int
	state      State
	wpm        int
	punctPause time.Duration
	timer      *time.Timer
	gen        uint64
	destroyed  bool
	cb         Callbacks
}

// New creates an engine over the given word sequence.
func New(words []string, opts Options) *Engine {
	e := &Engine{
		words:      words,
		wpm:        DefaultWPM,
		punctPause: DefaultPunctuationPause,
		cb:         opts.Callbacks,
	}
	if opts.WPM != 0 {
		e.wpm = clampInt(opts.WPM, MinWPM, MaxWPM)
	}
	if opts.PunctuationPause != 0 {
		e.punctPause = clampDuration(opts.PunctuationPause, MinPunctuationPause, MaxPunctuationPause)
	}
	return e
}

// WordDelay returns the delay scheduled after the most recently emitted
// word: the base 60000/wpm milliseconds, plus the full punctuation pause
// when that word ends a sentence (. ! ?) and half of it after , ; or :.
func (e *Engine) WordDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wordDelayLocked()
}

func (e *Engine) wordDelayLocked() time.Duration {
	base := time.Minute / time.Duration(e.wpm)

	if e.index == 0 || e.index > len(e.words) {
		return base
	}
	prev := e.words[e.index-1]
	if prev == "" {
		return base
	}

	switch {
	case strings.ContainsRune(".!?", rune(prev[len(prev)-1])):
		return base + e.punctPause
	case strings.ContainsRune(",;:", rune(prev[len(prev)-1])):
		return base + e.punctPause/2
	default:
		return base
	}
}

// Play starts or resumes presentation. Calling Play while already playing
// has no observable effect. Playing from Completed resets to the first word.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.destroyed || e.state == StatePlaying {
		e.mu.Unlock()
		return
	}

	var resetEmit bool
	if e.index >= len(e.words) {
		e.cancelTimerLocked()
		e.index = 0
		resetEmit = true
	}

	e.state = StatePlaying
	gen := e.gen
	total := len(e.words)
	e.mu.Unlock()

	if resetEmit {
		e.emitWordChange("", 0)
		e.emitProgress(0, 0, total)
	}

	e.advance(gen)
}

// Pause stops presentation, cancelling any pending word advance.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state == StatePlaying {
		e.cancelTimerLocked()
		e.state = StatePaused
	}
	e.mu.Unlock()
}

// Reset returns the engine to Idle at index 0 and notifies observers.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.cancelTimerLocked()
	e.state = StateIdle
	e.index = 0
	total := len(e.words)
	e.mu.Unlock()

	e.emitWordChange("", 0)
	e.emitProgress(0, 0, total)
}

// JumpToWord seeks to index i, clamped to [0, total]. The pending timer is
// cancelled before the seek, so no stale word fires afterwards. If the
// engine was playing it resumes from the new position.
func (e *Engine) JumpToWord(i int) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	wasPlaying := e.state == StatePlaying
	e.cancelTimerLocked()
	e.state = StatePaused
	e.index = clampInt(i, 0, len(e.words))

	idx := e.index
	total := len(e.words)
	var word string
	emitWord := idx < total
	if emitWord {
		word = e.words[idx]
	}
	e.mu.Unlock()

	if emitWord {
		e.emitWordChange(word, idx)
	}
	e.emitProgress(percentage(idx, total), idx, total)

	if wasPlaying {
		e.Play()
	}
}

// Skip moves n words forward (or backward for negative n).
func (e *Engine) Skip(n int) {
	e.mu.Lock()
	target := e.index + n
	e.mu.Unlock()
	e.JumpToWord(target)
}

// SetSpeed updates the pace, clamped to [MinWPM, MaxWPM]. Takes effect from
// the next scheduled word.
func (e *Engine) SetSpeed(wpm int) {
	e.mu.Lock()
	e.wpm = clampInt(wpm, MinWPM, MaxWPM)
	e.mu.Unlock()
}

// SetPunctuationPause updates the extra pause added after punctuation,
// clamped to [0, MaxPunctuationPause].
func (e *Engine) SetPunctuationPause(d time.Duration) {
	e.mu.Lock()
	e.punctPause = clampDuration(d, MinPunctuationPause, MaxPunctuationPause)
	e.mu.Unlock()
}

// Snapshot is a point-in-time view of engine state.
type Snapshot struct {
	Index    int
	Total    int
	State    State
	WPM      int
	Progress float64
}

// State returns a snapshot of the current engine state.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Index:    e.index,
		Total:    len(e.words),
		State:    e.state,
		WPM:      e.wpm,
		Progress: percentage(e.index, len(e.words)),
	}
}

// TimeRemaining estimates the remaining reading time at the current pace,
// formatted as "m:ss".
func (e *Engine) TimeRemaining() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	wordsLeft := len(e.words) - e.index
	if wordsLeft < 0 {
		wordsLeft = 0
	}
	secondsLeft := (wordsLeft*60 + e.wpm - 1) / e.wpm
	return fmt.Sprintf("%d:%02d", secondsLeft/60, secondsLeft%60)
}

// Destroy cancels any pending advance and releases the word sequence.
// The engine must not be used afterwards.
func (e *Engine) Destroy() {
	e.mu.Lock()
	e.cancelTimerLocked()
	e.state = StateIdle
	e.words = nil
	e.index = 0
	e.destroyed = true
	e.mu.Unlock()
}

// advance presents the word at the current index, then schedules the next
// advance if the engine is still playing under the same generation.
func (e *Engine) advance(gen uint64) {
	e.mu.Lock()
	if e.destroyed || gen != e.gen || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}

	total := len(e.words)
	if e.index >= total {
		e.cancelTimerLocked()
		e.state = StateCompleted
		e.mu.Unlock()
		e.emitComplete()
		return
	}

	idx := e.index
	word := e.words[idx]
	e.index++
	e.mu.Unlock()

	e.emitWordChange(word, idx)
	e.emitProgress(percentage(idx+1, total), idx+1, total)

	// A callback may have paused or sought; only schedule when still playing
	// under the same generation.
	e.mu.Lock()
	if !e.destroyed && gen == e.gen && e.state == StatePlaying {
		delay := e.wordDelayLocked()
		e.timer = afterFunc(delay, func() { e.advance(gen) })
	}
	e.mu.Unlock()
}

// cancelTimerLocked stops the pending timer (if any) and invalidates every
// in-flight advance by bumping the generation.
func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (e *Engine) emitWordChange(word string, index int) {
	if e.cb.OnWordChange != nil {
		e.cb.OnWordChange(word, index)
	}
}

func (e *Engine) emitProgress(percent float64, current, total int) {
	if e.cb.OnProgress != nil {
		e.cb.OnProgress(percent, current, total)
	}
}

func (e *Engine) emitComplete() {
	if e.cb.OnComplete != nil {
		e.cb.OnComplete()
	}
}

func percentage(index, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(index) / float64(total) * 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
