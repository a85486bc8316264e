package app

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/domain"
)

// Rand is the single source of randomness behind every business draw.
// *rand.Rand satisfies it; use NewRand for a goroutine-safe instance.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe seeded source. A zero seed uses the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

const (
	StrategyFailProbability = "fail_probability"
	StrategyEffort          = "effort"
	StrategyCorrectness     = "correctness"
)

// Attempt is the frozen input handed to a policy at submission.
type Attempt struct {
	Answers   domain.AnswerSet
	Questions int
	Correct   int
	Elapsed   time.Duration
	Remaining time.Duration
	Reason    SubmitReason
}

// Outcome is a score with its derived classification.
type Outcome struct {
	Score    int
	Status   domain.Status
	IsTopper bool
}

// ScoringPolicy turns attempts into scores and tiers.
type ScoringPolicy struct {
	cfg config.Policy
	rnd Rand
}

// NewScoringPolicy validates cfg and binds it to a random source.
func NewScoringPolicy(cfg config.Policy, rnd Rand) (*ScoringPolicy, error) {
	if cfg.SelectedMin == 0 && cfg.WaitlistedMin == 0 {
		cfg.SelectedMin, cfg.WaitlistedMin = 75, 60
	}
	if cfg.EffortThreshold == 0 {
		cfg.EffortThreshold = 0.5
	}
	if err := validatePolicy(cfg); err != nil {
		return nil, err
	}
	return &ScoringPolicy{cfg: cfg, rnd: rnd}, nil
}

func validatePolicy(cfg config.Policy) error {
	switch cfg.Strategy {
	case StrategyFailProbability, StrategyEffort, StrategyCorrectness:
	default:
		return fmt.Errorf("unknown scoring strategy %q", cfg.Strategy)
	}
	for name, b := range map[string]config.Band{"low_band": cfg.LowBand, "high_band": cfg.HighBand} {
		if b.Min < 0 || b.Max > 100 || b.Min > b.Max {
			return fmt.Errorf("%s %d..%d must lie within 0..100", name, b.Min, b.Max)
		}
	}
	for name, p := range map[string]float64{
		"fail_probability":   cfg.FailProbability,
		"topper_probability": cfg.TopperProbability,
		"effort_threshold":   cfg.EffortThreshold,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s %.2f must lie within 0..1", name, p)
		}
	}
	if cfg.WaitlistedMin > cfg.SelectedMin {
		return fmt.Errorf("waitlisted_min %d exceeds selected_min %d", cfg.WaitlistedMin, cfg.SelectedMin)
	}
	return nil
}

// Classify maps a score to its tier. Equal thresholds collapse the waitlist.
func (p *ScoringPolicy) Classify(score int) domain.Status {
	switch {
	case score >= p.cfg.SelectedMin:
		return domain.StatusSelected
	case score >= p.cfg.WaitlistedMin:
		return domain.StatusWaitlisted
	default:
		return domain.StatusRejected
	}
}

// Evaluate scores a finished attempt according to the configured strategy.
func (p *ScoringPolicy) Evaluate(a Attempt) (Outcome, error) {
	var score int
	switch p.cfg.Strategy {
	case StrategyEffort:
		low := float64(len(a.Answers)) < p.cfg.EffortThreshold*float64(a.Questions)
		score = p.drawBand(low)
	case StrategyCorrectness:
		if a.Questions > 0 {
			score = int(math.Round(100 * float64(a.Correct) / float64(a.Questions)))
		}
	default:
		score = p.drawBand(p.rnd.Float64() < p.cfg.FailProbability)
	}
	return p.finish(score)
}

// Draw produces an outcome without an answer set. Strategies that need answers
// fall back to the tier-bias draw.
func (p *ScoringPolicy) Draw() (Outcome, error) {
	return p.finish(p.drawBand(p.rnd.Float64() < p.cfg.FailProbability))
}

func (p *ScoringPolicy) drawBand(low bool) int {
	band := p.cfg.HighBand
	if low {
		band = p.cfg.LowBand
	}
	return band.Min + p.rnd.Intn(band.Max-band.Min+1)
}

func (p *ScoringPolicy) finish(score int) (Outcome, error) {
	if score < 0 || score > 100 {
		return Outcome{}, fmt.Errorf("%w: %d", domain.ErrScoreOutOfRange, score)
	}
	out := Outcome{Score: score, Status: p.Classify(score)}
	if out.Status == domain.StatusSelected {
		out.IsTopper = p.rnd.Float64() < p.cfg.TopperProbability
	}
	return out, nil
}
