package config

import "fmt"

func validate(c *Config) error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must be set")
	}
	if c.Timing.PageLoadTimeout <= 0 {
		return fmt.Errorf("page load timeout must be > 0")
	}
	if c.Timing.ElementTimeout <= 0 {
		return fmt.Errorf("element timeout must be > 0")
	}
	if c.Timing.ResultsTimeout <= 0 {
		return fmt.Errorf("results timeout must be > 0")
	}
	if c.MaxJobs < 0 {
		return fmt.Errorf("max jobs must be >= 0")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1")
	}
	for _, b := range []DelayBounds{
		c.Timing.ReadDelay, c.Timing.TypingDelay,
		c.Timing.ClickDelay, c.Timing.RecordDelay, c.Timing.FieldPause,
	} {
		if b.Min < 0 || b.Max < b.Min {
			return fmt.Errorf("delay bounds must satisfy 0 <= min <= max")
		}
	}
	if len(c.Selectors.JobTitleInput.Candidates) == 0 {
		return fmt.Errorf("job title input cascade must not be empty")
	}
	if len(c.Selectors.JobListings.Candidates) == 0 {
		return fmt.Errorf("job listings cascade must not be empty")
	}
	return nil
}
