package events

import (
	"context"
	"time"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/sirupsen/logrus"
)

// DefaultResponseTimeout bounds WAMP requests made by the sink.
const DefaultResponseTimeout = 5 * time.Second

// WampSink publishes notifications on a WAMP router. Each notification is
// published with a single positional argument carrying its payload.
type WampSink struct {
	client *client.Client
	logger *logrus.Entry
}

// NewWampSink wraps a connected WAMP client.
func NewWampSink(cli *client.Client, logger *logrus.Entry) *WampSink {
	return &WampSink{
		client: cli,
		logger: logger,
	}
}

// DialWampSink connects to the WAMP router at url (ws:// or wss://) and joins
// realm.
func DialWampSink(ctx context.Context, url string, realm string, logger *logrus.Entry) (*WampSink, error) {
	cfg := client.Config{
		Realm:           realm,
		ResponseTimeout: DefaultResponseTimeout,
		Logger:          logger,
	}

	cli, err := client.ConnectNet(ctx, url, cfg)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"url":   url,
		"realm": realm,
	}).Debug("Connected to events router")

	return NewWampSink(cli, logger), nil
}

// Log implements Sink.
func (s *WampSink) Log(msg string) {
	s.publish(TopicLog, msg)
}

// Alert implements Sink.
func (s *WampSink) Alert(a Alert) {
	s.publish(TopicAlert, wamp.Dict{
		"type": string(a.Type),
		"message": wamp.Dict{
			"title":       a.Message.Title,
			"description": a.Message.Description,
		},
	})
}

// MatchEnded implements Sink.
func (s *WampSink) MatchEnded(e MatchEnd) {
	payload := wamp.Dict{
		"reason":  e.Reason,
		"matchId": e.MatchID,
	}
	s.publish(TopicEndMatch, payload)
	s.publish(TopicEndMatchUI, payload)
}

// Close leaves the realm and closes the connection.
func (s *WampSink) Close() error {
	return s.client.Close()
}

func (s *WampSink) publish(topic string, payload interface{}) {
	if err := s.client.Publish(topic, nil, wamp.List{payload}, nil); err != nil {
		s.logger.WithError(err).WithField("topic", topic).Warn("Publishing notification")
	}
}
