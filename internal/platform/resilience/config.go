package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled        bool
	SamplingWindow time.Duration
	MinThroughput  int
	FailureRatio   float64
	BreakDuration  time.Duration
	HalfOpenMaxReq int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:        true,
		SamplingWindow: 30 * time.Second,
		MinThroughput:  2,
		FailureRatio:   0.5,
		BreakDuration:  15 * time.Second,
		HalfOpenMaxReq: 1,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.SamplingWindow <= 0 {
		cfg.SamplingWindow = defaults.SamplingWindow
	}
	if cfg.MinThroughput < 1 {
		cfg.MinThroughput = defaults.MinThroughput
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		cfg.FailureRatio = defaults.FailureRatio
	}
	if cfg.BreakDuration <= 0 {
		cfg.BreakDuration = defaults.BreakDuration
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
	}
}

// NormalizeRetryConfig keeps zero retries as a valid choice and only fixes negative values.
func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	return cfg
}
