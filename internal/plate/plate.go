// Package plate turns noisy per-frame OCR text into a single trusted plate
// identity. Raw readings are normalized against the plate format and fed
// into a small rolling buffer; a plurality vote across the buffer rejects
// transient misreads without requiring the OCR engine to be right every
// frame.
package plate

import (
	"strings"
	"time"
)

// Length is the normalized plate length: 3 uppercase letters (starting with
// the region marker), 3 digits, 1 uppercase letter.
const Length = 7

// Normalize extracts and validates a plate candidate from raw OCR text.
// The candidate starts at the first occurrence of the region marker and is
// truncated to exactly Length characters; anything trailing is OCR noise.
// Returns false for text with no marker, too few characters after it, or a
// structurally invalid candidate.
func Normalize(raw, region string) (string, bool) {
	idx := strings.Index(raw, region)
	if idx < 0 {
		return "", false
	}

	cand := raw[idx:]
	if len(cand) < Length {
		return "", false
	}
	cand = cand[:Length]

	for i := 0; i < 3; i++ {
		if !isUpperLetter(cand[i]) {
			return "", false
		}
	}
	for i := 3; i < 6; i++ {
		if cand[i] < '0' || cand[i] > '9' {
			return "", false
		}
	}
	if !isUpperLetter(cand[6]) {
		return "", false
	}
	return cand, true
}

func isUpperLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// FilterConfig holds the debounce parameters.
type FilterConfig struct {
	// Region is the marker that anchors a candidate inside raw OCR text.
	Region string

	// Capacity is how many valid candidates must accumulate before a vote.
	// Defaults to 3.
	Capacity int

	// IdleClear drops a partial buffer when no valid candidate has arrived
	// for this long, so a leftover vote can't contaminate the next
	// vehicle's identity. Defaults to 2s.
	IdleClear time.Duration
}

// Filter accumulates normalized candidates and emits a confirmed plate once
// the buffer fills. Not safe for concurrent use; each station owns one.
type Filter struct {
	cfg       FilterConfig
	buf       []string
	lastValid time.Time
}

func NewFilter(cfg FilterConfig) *Filter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 3
	}
	if cfg.IdleClear <= 0 {
		cfg.IdleClear = 2 * time.Second
	}
	return &Filter{cfg: cfg}
}

// Observe feeds one raw OCR reading into the filter. When the observation
// fills the buffer, Observe returns the plurality winner (ties broken by
// first-seen order) and clears the buffer for the next vehicle.
func (f *Filter) Observe(raw string, now time.Time) (string, bool) {
	if len(f.buf) > 0 && now.Sub(f.lastValid) > f.cfg.IdleClear {
		f.buf = f.buf[:0]
	}

	cand, ok := Normalize(raw, f.cfg.Region)
	if !ok {
		return "", false
	}

	f.buf = append(f.buf, cand)
	f.lastValid = now

	if len(f.buf) < f.cfg.Capacity {
		return "", false
	}

	winner := pluralityWinner(f.buf)
	f.buf = f.buf[:0]
	return winner, true
}

// Clear drops any partial vote. Called when the proximity condition ends.
func (f *Filter) Clear() {
	f.buf = f.buf[:0]
}

func pluralityWinner(candidates []string) string {
	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c]++
	}

	// Walking in observation order with a strict > makes the first-seen
	// candidate win ties.
	var winner string
	best := 0
	for _, c := range candidates {
		if counts[c] > best {
			winner = c
			best = counts[c]
		}
	}
	return winner
}
