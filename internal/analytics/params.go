package analytics

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Unlimited disables result truncation.
const Unlimited = math.MaxInt

// Report defaults.
const (
	DefaultWinLimit              = 10
	DefaultWinMinMatches         = 5
	DefaultPerformanceLimit      = 20
	DefaultPerformanceMinMatches = 10
	DefaultTournamentLimit       = 10
)

// Params are the optional report parameters. Reports ignore the ones they
// do not accept.
type Params struct {
	Limit      int `json:"limit" validate:"gte=0"`
	MinMatches int `json:"minMatches" validate:"gte=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateParams(ctx context.Context, p *Params) error {
	if p == nil {
		return nil
	}
	if err := getValidator().StructCtx(ctx, p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return nil
}
