package formula

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mcdev12/multis/go/internal/models"
)

// ErrGeneratorExhaustion is returned when a difficulty configuration cannot
// produce a single answerable formula.
var ErrGeneratorExhaustion = errors.New("difficulty yields no valid factor range")

// DifficultyConfig bounds the factors of generated formulas (inclusive).
type DifficultyConfig struct {
	MinFactor int `yaml:"min_factor" json:"min_factor"`
	MaxFactor int `yaml:"max_factor" json:"max_factor"`
}

// DefaultDifficulty is the classic 1..12 times table.
func DefaultDifficulty() DifficultyConfig {
	return DifficultyConfig{MinFactor: 1, MaxFactor: 12}
}

// Validate checks that every formula in the range is answerable with at most
// maxDigits digits. Zero factors are excluded: a zero answer cannot be typed
// and a zero factor makes the other factor ambiguous.
func (c DifficultyConfig) Validate(maxDigits int) error {
	if c.MinFactor < 1 {
		return fmt.Errorf("%w: min_factor %d must be at least 1", ErrGeneratorExhaustion, c.MinFactor)
	}
	if c.MaxFactor < c.MinFactor {
		return fmt.Errorf("%w: max_factor %d is below min_factor %d", ErrGeneratorExhaustion, c.MaxFactor, c.MinFactor)
	}
	if maxDigits > 0 {
		limit := 1
		for range maxDigits {
			limit *= 10
		}
		if c.MaxFactor*c.MaxFactor >= limit {
			return fmt.Errorf("%w: product %d does not fit in %d digits",
				ErrGeneratorExhaustion, c.MaxFactor*c.MaxFactor, maxDigits)
		}
	}
	return nil
}

// Generator produces formulas from its own random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator constructs a Generator over src. A nil src is seeded from the clock.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)}
}

// NewSeededGenerator is a deterministic Generator for replays and tests.
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.NewSource(seed))
}

// Generate picks both factors within cfg, computes the product and hides one
// of the three values uniformly at random.
func (g *Generator) Generate(cfg DifficultyConfig) (models.Formula, error) {
	if err := cfg.Validate(0); err != nil {
		return models.Formula{}, err
	}
	span := cfg.MaxFactor - cfg.MinFactor + 1
	a := cfg.MinFactor + g.rng.Intn(span)
	b := cfg.MinFactor + g.rng.Intn(span)
	hidden := models.HiddenPositions[g.rng.Intn(len(models.HiddenPositions))]
	return models.NewFormula(a, b, hidden), nil
}
