package events

import (
	"github.com/sirupsen/logrus"
)

// LogSink writes notifications to a logrus logger.
type LogSink struct {
	logger *logrus.Entry
}

// NewLogSink ...
func NewLogSink(logger *logrus.Entry) *LogSink {
	return &LogSink{logger: logger}
}

// Log implements Sink.
func (s *LogSink) Log(msg string) {
	s.logger.WithField("topic", TopicLog).Info(msg)
}

// Alert implements Sink.
func (s *LogSink) Alert(a Alert) {
	entry := s.logger.WithFields(logrus.Fields{
		"topic":       TopicAlert,
		"description": a.Message.Description,
	})

	if a.Type == AlertError {
		entry.Error(a.Message.Title)
		return
	}
	entry.Info(a.Message.Title)
}

// MatchEnded implements Sink.
func (s *LogSink) MatchEnded(e MatchEnd) {
	s.logger.WithFields(logrus.Fields{
		"topic":    TopicEndMatch,
		"reason":   e.Reason,
		"match_id": e.MatchID,
	}).Info("Match ended")
}
