// Package events delivers session notifications to the user interface.
//
// Notifications are fire-and-forget: a Sink never blocks the relay on a slow
// or absent consumer, and delivery failures are only logged.
package events

// Topics on which notifications are published.
const (
	TopicLog        = "proxy-log"
	TopicAlert      = "sendAlert"
	TopicEndMatch   = "endMatch"
	TopicEndMatchUI = "endMatchUI"
)

// AlertType is the severity of an Alert.
type AlertType string

// Alert severities.
const (
	AlertInfo  AlertType = "info"
	AlertError AlertType = "error"
)

// AlertMessage is the user-facing content of an Alert.
type AlertMessage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Alert is a message meant to be shown to the user.
type Alert struct {
	Type    AlertType    `json:"type"`
	Message AlertMessage `json:"message"`
}

// InfoAlert ...
func InfoAlert(title, description string) Alert {
	return Alert{
		Type:    AlertInfo,
		Message: AlertMessage{Title: title, Description: description},
	}
}

// ErrorAlert ...
func ErrorAlert(title, description string) Alert {
	return Alert{
		Type:    AlertError,
		Message: AlertMessage{Title: title, Description: description},
	}
}

// MatchEnd announces the end of a session. It is published on both
// TopicEndMatch and TopicEndMatchUI.
type MatchEnd struct {
	Reason  string `json:"reason"`
	MatchID string `json:"matchId"`
}

// Sink receives the notifications of a session.
type Sink interface {
	// Log publishes a diagnostic line on TopicLog.
	Log(msg string)
	// Alert publishes a user alert on TopicAlert.
	Alert(a Alert)
	// MatchEnded publishes the end of the session.
	MatchEnded(e MatchEnd)
}

// Multi fans notifications out to several sinks.
type Multi []Sink

// Log implements Sink.
func (m Multi) Log(msg string) {
	for _, s := range m {
		s.Log(msg)
	}
}

// Alert implements Sink.
func (m Multi) Alert(a Alert) {
	for _, s := range m {
		s.Alert(a)
	}
}

// MatchEnded implements Sink.
func (m Multi) MatchEnded(e MatchEnd) {
	for _, s := range m {
		s.MatchEnded(e)
	}
}
