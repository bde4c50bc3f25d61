package riskfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// Category is a fund size category.
type Category string

const (
	SmallCap Category = "smallCap"
	MidCap   Category = "midCap"
	LargeCap Category = "largeCap"
)

// Categories returns the categories in display order.
func Categories() []Category { return []Category{SmallCap, MidCap, LargeCap} }

// Label returns the human readable name of c.
func (c Category) Label() string {
	switch c {
	case SmallCap:
		return "Small Cap"
	case MidCap:
		return "Mid Cap"
	case LargeCap:
		return "Large Cap"
	}
	return string(c)
}

// Slice is the share of the investable amount given to a category.
type Slice struct {
	Percentage Percent `json:"percentage"`
	Amount     Money   `json:"amount"`
	Funds      int     `json:"funds"` // number of funds to pick
}

// AllocationErrorMessage is the user facing message of a failed allocation.
const AllocationErrorMessage = "Failed to generate portfolio recommendation."

// Allocation splits an investable amount across the three categories.
//
// A failed allocation only carries Error, callers must check Failed before
// reading the slices.
type Allocation struct {
	SmallCap Slice  `json:"smallCap"`
	MidCap   Slice  `json:"midCap"`
	LargeCap Slice  `json:"largeCap"`
	Error    string `json:"error,omitempty"`

	cause error
}

// Failed reports whether the allocation could not be produced.
func (a Allocation) Failed() bool { return a.Error != "" }

// Cause returns the internal reason of a failed allocation, it is never
// serialized.
func (a Allocation) Cause() error { return a.cause }

// Slice returns the slice of category c.
func (a Allocation) Slice(c Category) Slice {
	switch c {
	case SmallCap:
		return a.SmallCap
	case MidCap:
		return a.MidCap
	case LargeCap:
		return a.LargeCap
	}
	return Slice{}
}

// MarshalJSON writes either the three slices or only the error.
func (a Allocation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	if a.Failed() {
		w.Append("error", a.Error)
		return w.MarshalJSON()
	}
	w.Append("smallCap", a.SmallCap)
	w.Append("midCap", a.MidCap)
	w.Append("largeCap", a.LargeCap)
	return w.MarshalJSON()
}

func failed(cause error) Allocation {
	return Allocation{Error: AllocationErrorMessage, cause: cause}
}

// AllocationSuggester answers a free text allocation request with a free text
// that is expected to contain a JSON allocation.
//
// Implementations must be safe to call concurrently.
type AllocationSuggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// SuggesterFunc adapts a function to the AllocationSuggester interface.
type SuggesterFunc func(ctx context.Context, prompt string) (string, error)

func (f SuggesterFunc) Suggest(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// DefaultTimeout bounds the call to the suggester.
const DefaultTimeout = 30 * time.Second

// Allocator computes allocations with the help of an AllocationSuggester.
type Allocator struct {
	Suggester AllocationSuggester
	Timeout   time.Duration
	Log       zerolog.Logger
}

// NewAllocator returns an Allocator with the default timeout and no logs.
func NewAllocator(s AllocationSuggester) *Allocator {
	return &Allocator{
		Suggester: s,
		Timeout:   DefaultTimeout,
		Log:       zerolog.Nop(),
	}
}

// Allocate splits amount according to the investment profile of score.
//
// It never returns an error nor panics: any failure, including a suggester
// error, a timeout or an unreadable answer, results in an Allocation with
// Error set to AllocationErrorMessage.
func (a *Allocator) Allocate(ctx context.Context, score RiskScore, amount Money) (alloc Allocation) {
	defer func() {
		if r := recover(); r != nil {
			alloc = failed(fmt.Errorf("suggester panic: %v", r))
			a.Log.Error().Err(alloc.cause).Msg("allocation failed")
		}
	}()

	tier, err := Bucket(score)
	if err != nil {
		a.Log.Error().Err(err).Float64("score", float64(score)).Msg("allocation failed")
		return failed(err)
	}
	if a.Suggester == nil {
		err := errors.New("no allocation suggester")
		a.Log.Error().Err(err).Msg("allocation failed")
		return failed(err)
	}

	prompt := AllocationPrompt(amount, tier, score)
	a.Log.Debug().Str("tier", tier.Name).Str("prompt", prompt).Msg("requesting allocation")

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := a.suggest(ctx, prompt)
	if err != nil {
		err = fmt.Errorf("cannot get allocation suggestion: %w", err)
		a.Log.Error().Err(err).Str("tier", tier.Name).Msg("allocation failed")
		return failed(err)
	}

	alloc, err = ParseAllocation(text)
	if err != nil {
		a.Log.Error().Err(err).Str("response", text).Msg("allocation failed")
		return failed(err)
	}

	a.check(alloc, amount)
	return alloc
}

// suggest calls the suggester and gives up when ctx is done, whether the
// suggester honors ctx or not.
func (a *Allocator) suggest(ctx context.Context, prompt string) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("suggester panic: %v", r)}
			}
		}()
		text, err := a.Suggester.Suggest(ctx, prompt)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// check logs the inconsistencies of an accepted allocation of amount.
func (a *Allocator) check(alloc Allocation, amount Money) {
	sum := floats.Sum([]float64{
		float64(alloc.SmallCap.Percentage),
		float64(alloc.MidCap.Percentage),
		float64(alloc.LargeCap.Percentage),
	})
	if math.Abs(sum-100) > 0.5 {
		a.Log.Warn().Float64("sum", sum).Msg("allocation percentages do not sum to 100")
	}

	for _, c := range Categories() {
		slice := alloc.Slice(c)
		if want := amount.Part(slice.Percentage); !near(slice.Amount, want) {
			a.Log.Warn().Str("category", string(c)).
				Stringer("amount", slice.Amount).
				Stringer("expected", want).
				Msg("allocation amount does not match its percentage")
		}
	}
	total := alloc.SmallCap.Amount.Add(alloc.MidCap.Amount).Add(alloc.LargeCap.Amount)
	if !near(total, amount) {
		a.Log.Warn().Stringer("total", total).Stringer("amount", amount).Msg("allocation amounts do not sum to the investment")
	}
}

// near reports whether m and n are less than one rupee apart.
func near(m, n Money) bool {
	d := m.Sub(n)
	return !d.LessThan(M(-1)) && !d.GreaterThanOrEqual(M(1))
}

// ErrMalformedSuggestion is returned when a suggestion cannot be read as an
// allocation.
var ErrMalformedSuggestion = errors.New("malformed allocation suggestion")

var fences = regexp.MustCompile("(?i)```json|```")

// suggestion is the JSON shape requested from the suggester, pointers detect
// missing entries.
type suggestion struct {
	SmallCap *suggestedSlice `json:"smallCap"`
	MidCap   *suggestedSlice `json:"midCap"`
	LargeCap *suggestedSlice `json:"largeCap"`
}

type suggestedSlice struct {
	Percentage *Percent        `json:"percentage"`
	Amount     *Money          `json:"amount"`
	Funds      json.RawMessage `json:"funds"` // a count or a list of funds
}

// ParseAllocation reads a suggester answer. Code fences are stripped and, when
// the answer has text around the JSON, the first JSON object is used.
func ParseAllocation(text string) (Allocation, error) {
	clean := strings.TrimSpace(fences.ReplaceAllString(text, ""))
	if !strings.HasPrefix(clean, "{") {
		clean = extractJSON(clean)
	}
	if clean == "" {
		return Allocation{}, fmt.Errorf("%w: no JSON object found", ErrMalformedSuggestion)
	}

	var s suggestion
	if err := json.Unmarshal([]byte(clean), &s); err != nil {
		return Allocation{}, fmt.Errorf("%w: %w", ErrMalformedSuggestion, err)
	}

	var alloc Allocation
	for _, c := range Categories() {
		var ss *suggestedSlice
		var dst *Slice
		switch c {
		case SmallCap:
			ss, dst = s.SmallCap, &alloc.SmallCap
		case MidCap:
			ss, dst = s.MidCap, &alloc.MidCap
		case LargeCap:
			ss, dst = s.LargeCap, &alloc.LargeCap
		}
		slice, err := ss.slice()
		if err != nil {
			return Allocation{}, fmt.Errorf("%w: %s: %w", ErrMalformedSuggestion, c, err)
		}
		*dst = slice
	}
	return alloc, nil
}

func (s *suggestedSlice) slice() (Slice, error) {
	switch {
	case s == nil:
		return Slice{}, errors.New("missing category")
	case s.Percentage == nil:
		return Slice{}, errors.New("missing percentage")
	case !s.Percentage.Valid():
		return Slice{}, fmt.Errorf("percentage %v out of range", *s.Percentage)
	case s.Amount == nil:
		return Slice{}, errors.New("missing amount")
	case s.Amount.value.IsNegative():
		return Slice{}, fmt.Errorf("negative amount %v", *s.Amount)
	}
	slice := Slice{Percentage: *s.Percentage, Amount: *s.Amount}
	n, ok, err := fundsCount(s.Funds)
	switch {
	case err != nil:
		return Slice{}, err
	case ok:
		slice.Funds = n
	default:
		slice.Funds = FundCount(slice.Amount)
	}
	return slice, nil
}

// fundsCount reads the number of funds of a suggested slice: a non negative
// integral number, or the length of a list. ok is false when raw is absent
// or null.
func fundsCount(raw json.RawMessage) (n int, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 || math.Trunc(f) != f || f > math.MaxInt32 {
			return 0, false, fmt.Errorf("invalid funds count %s", raw)
		}
		return int(f), true, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list), true, nil
	}
	return 0, false, fmt.Errorf("invalid funds %s, want a count or a list", raw)
}

// extractJSON returns the first balanced JSON object found in text, or "".
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
