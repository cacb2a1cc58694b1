package strategy

import (
	"errors"

	"playbook-lab/internal/domain"
)

// Factory errors
var (
	ErrNegativeStop     = errors.New("stop points must not be negative")
	ErrNegativeTrigger  = errors.New("trailing trigger must not be negative")
	ErrNegativeDistance = errors.New("trailing distance must not be negative")
)

// FromConfig creates the ExitModel selected by cfg.
// Trailing settings are only validated when trailing is enabled.
func FromConfig(cfg domain.BacktestConfig) (ExitModel, error) {
	if cfg.StopPoints < 0 {
		return nil, ErrNegativeStop
	}
	if !cfg.Trailing.Enabled {
		return NewStaticStop(cfg.StopPoints), nil
	}
	return fromTrailingConfig(cfg)
}

// fromTrailingConfig creates TrailingStop from config.
func fromTrailingConfig(cfg domain.BacktestConfig) (*TrailingStop, error) {
	if cfg.Trailing.Trigger < 0 {
		return nil, ErrNegativeTrigger
	}
	if cfg.Trailing.Distance < 0 {
		return nil, ErrNegativeDistance
	}

	return NewTrailingStop(
		cfg.StopPoints,
		cfg.Trailing.Trigger,
		cfg.Trailing.Distance,
	), nil
}
