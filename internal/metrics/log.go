package metrics

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogSink writes a structured summary line per iteration.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger, or the standard logger
// when nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, rec IterationRecord) {
	fields := log.Fields{
		"run_id":      rec.RunID,
		"iteration":   rec.Iteration,
		"reward_mean": rec.RewardMean,
		"reward_std":  rec.RewardStd,
	}
	for stage, secs := range rec.Timing {
		fields["time/"+stage] = secs
	}
	s.logger.WithFields(fields).Info("iteration complete")

	if s.logger.IsLevelEnabled(log.DebugLevel) {
		for k, v := range rec.Optimizer {
			s.logger.WithField(k, v).Debug("optimizer stat")
		}
	}
}
