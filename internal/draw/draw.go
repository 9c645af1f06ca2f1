package draw

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nakawin/casino-backend/pkg/db/models"
)

// Result is the outcome of one weighted draw. Fallback is set when the
// cumulative scan exhausted every option without selecting one (floating
// point edge at the top of the range) and the last option was used instead.
type Result struct {
	Option   models.RewardOption
	Index    int
	Roll     float64
	Fallback bool
}

// Engine picks reward options by weight. Safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine seeds an engine from the current time.
func NewEngine() *Engine {
	return &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewEngineWithSource builds an engine with the provided source, used by
// tests that need deterministic rolls.
func NewEngineWithSource(src rand.Source) *Engine {
	return &Engine{rng: rand.New(src)}
}

// Draw scans options in stored order, accumulating weight until the roll is
// covered. The engine only supplies the sample; selection itself is Pick.
func (e *Engine) Draw(options []models.RewardOption) (Result, error) {
	return Pick(options, e.roll())
}

// Pick resolves a caller-supplied sample in [0, 1) against the cumulative
// weight table: the winner is the first option whose cumulative weight
// reaches the scaled sample. Options with non-positive weight never win.
// When floating point accumulation leaves the scan short, the last option
// is returned with Fallback set so the caller can log it. Pick consumes no
// entropy itself.
func Pick(options []models.RewardOption, sample float64) (Result, error) {
	if len(options) == 0 {
		return Result{}, fmt.Errorf("no options to draw from")
	}

	total := 0.0
	for _, option := range options {
		if option.Weight > 0 {
			total += option.Weight
		}
	}
	if total <= 0 {
		return Result{}, fmt.Errorf("total weight must be positive")
	}

	return pick(options, sample*total), nil
}

// pick resolves an absolute roll in weight units.
func pick(options []models.RewardOption, roll float64) Result {
	cumulative := 0.0
	for i, option := range options {
		if option.Weight <= 0 {
			continue
		}
		cumulative += option.Weight
		if roll <= cumulative {
			return Result{Option: option, Index: i, Roll: roll}
		}
	}

	last := len(options) - 1
	return Result{Option: options[last], Index: last, Roll: roll, Fallback: true}
}

func (e *Engine) roll() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}
