package events

import (
	"reflect"
	"testing"
	"time"

	"github.com/gammazero/nexus/v3/wamp"
	"github.com/mosaicnetworks/reflector/src/common"
)

func TestMultiAndRecorder(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	logSink := NewLogSink(common.NewTestEntry(t, common.TestLogLevel))

	m := Multi{a, b, logSink}

	m.Log("Port 7001 busy")
	m.Alert(ErrorAlert("Matchmaking timeout", "No response"))
	m.MatchEnded(MatchEnd{Reason: "proxy-stop", MatchID: "m-1"})

	for _, r := range []*Recorder{a, b} {
		if !reflect.DeepEqual(r.Logs(), []string{"Port 7001 busy"}) {
			t.Fatalf("unexpected logs %v", r.Logs())
		}

		alerts := r.Alerts()
		if len(alerts) != 1 || alerts[0].Type != AlertError || alerts[0].Message.Title != "Matchmaking timeout" {
			t.Fatalf("unexpected alerts %#v", alerts)
		}

		if !reflect.DeepEqual(r.Ends(), []MatchEnd{{Reason: "proxy-stop", MatchID: "m-1"}}) {
			t.Fatalf("unexpected ends %#v", r.Ends())
		}
	}

	if !a.WaitEnds(1, 0) {
		t.Fatalf("WaitEnds should succeed immediately")
	}

	if a.WaitEnds(2, 20*time.Millisecond) {
		t.Fatalf("WaitEnds should time out")
	}
}

func TestWampSink(t *testing.T) {
	logger := common.NewTestEntry(t, common.TestLogLevel)

	r, err := NewRouter("reflector", logger)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	subscriber, err := r.Connect()
	if err != nil {
		t.Fatal(err)
	}
	defer subscriber.Close()

	received := make(chan *wamp.Event, 10)
	for _, topic := range []string{TopicLog, TopicAlert, TopicEndMatch, TopicEndMatchUI} {
		if err := subscriber.Subscribe(topic, func(ev *wamp.Event) { received <- ev }, nil); err != nil {
			t.Fatal(err)
		}
	}

	sink, err := r.Sink()
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	sink.Log("hello")
	sink.Alert(InfoAlert("Emulator launching", "Starting emu"))
	sink.MatchEnded(MatchEnd{Reason: "emulator-exited", MatchID: "m-2"})

	events := []*wamp.Event{}
	timeout := time.After(5 * time.Second)
	for len(events) < 4 {
		select {
		case ev := <-received:
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("received %d events, expected 4", len(events))
		}
	}

	ends := 0
	for _, ev := range events {
		if len(ev.Arguments) != 1 {
			t.Fatalf("events should carry one argument, got %v", ev.Arguments)
		}
		if d, ok := wamp.AsDict(ev.Arguments[0]); ok {
			if reason, ok := wamp.AsString(d["reason"]); ok {
				if reason != "emulator-exited" {
					t.Fatalf("unexpected reason %s", reason)
				}
				ends++
			}
		}
	}

	if ends != 2 {
		t.Fatalf("end of match should be published on two topics, got %d", ends)
	}
}

func TestRouterListen(t *testing.T) {
	r, err := NewRouter("reflector", common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Addr() != "" {
		t.Fatalf("Addr should be empty before Listen")
	}

	if err := r.Listen("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}

	if r.Addr() == "" {
		t.Fatalf("Addr should be set after Listen")
	}
}
