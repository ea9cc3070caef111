package scrape

import "log/slog"

// Observer receives diagnostic events from the widening loop. Implementations
// must be cheap; they are called synchronously on the search path.
type Observer interface {
	AttemptStarted(term string, windowDays int, url string)
	AttemptFailed(term string, windowDays int, err error)
	ThresholdMet(term string, windowDays, records int)
	Exhausted(term string, windowDays, records int)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) AttemptStarted(string, int, string) {}
func (NopObserver) AttemptFailed(string, int, error)   {}
func (NopObserver) ThresholdMet(string, int, int)      {}
func (NopObserver) Exhausted(string, int, int)         {}

// SlogObserver logs every event through a structured logger.
type SlogObserver struct {
	Log *slog.Logger
}

func (o SlogObserver) AttemptStarted(term string, windowDays int, url string) {
	o.Log.Info("attempt started",
		slog.String("term", term),
		slog.Int("window_days", windowDays),
		slog.String("url", url),
	)
}

func (o SlogObserver) AttemptFailed(term string, windowDays int, err error) {
	o.Log.Warn("attempt failed, widening",
		slog.String("term", term),
		slog.Int("window_days", windowDays),
		slog.Any("err", err),
	)
}

func (o SlogObserver) ThresholdMet(term string, windowDays, records int) {
	o.Log.Info("threshold met",
		slog.String("term", term),
		slog.Int("window_days", windowDays),
		slog.Int("records", records),
	)
}

func (o SlogObserver) Exhausted(term string, windowDays, records int) {
	o.Log.Warn("windows exhausted",
		slog.String("term", term),
		slog.Int("window_days", windowDays),
		slog.Int("records", records),
	)
}
