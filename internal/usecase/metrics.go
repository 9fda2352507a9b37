package usecase

import "time"

// MetricsRecorder receives scoring-engine measurements. Implementations must be safe
// for concurrent use.
type MetricsRecorder interface {
	ObserveProjection(source, outcome string)
	ObserveSportsbookCache(provider string, hit bool)
	ObservePickResult(status, reason string)
	ObserveScoringRun(scored, unscored int, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveProjection(string, string)          {}
func (noopMetrics) ObserveSportsbookCache(string, bool)       {}
func (noopMetrics) ObservePickResult(string, string)          {}
func (noopMetrics) ObserveScoringRun(int, int, time.Duration) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
