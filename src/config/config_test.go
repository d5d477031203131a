package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	conf := NewDefaultConfig()

	if conf.HandshakeAttempts != 15 {
		t.Fatalf("HandshakeAttempts should be 15, not %d", conf.HandshakeAttempts)
	}

	if conf.HandshakeInterval.Seconds() != 1 {
		t.Fatalf("HandshakeInterval should be 1s, not %v", conf.HandshakeInterval)
	}

	if conf.KeepaliveInterval.Seconds() != 1 {
		t.Fatalf("KeepaliveInterval should be 1s, not %v", conf.KeepaliveInterval)
	}

	if conf.EmulatorPollInterval.Milliseconds() != 750 {
		t.Fatalf("EmulatorPollInterval should be 750ms, not %v", conf.EmulatorPollInterval)
	}

	if conf.Framing != "legacy" {
		t.Fatalf("Framing should be legacy, not %s", conf.Framing)
	}

	if conf.GetClock() == nil {
		t.Fatalf("Clock should not be nil")
	}
}

func TestSetDataDir(t *testing.T) {
	conf := NewDefaultConfig()
	conf.SetDataDir("/tmp/reflector")

	if conf.DatabaseDir != filepath.Join("/tmp/reflector", DefaultBadgerFile) {
		t.Fatalf("DatabaseDir should follow DataDir, got %s", conf.DatabaseDir)
	}

	conf.DatabaseDir = "/elsewhere"
	conf.SetDataDir("/tmp/other")

	if conf.DatabaseDir != "/elsewhere" {
		t.Fatalf("explicit DatabaseDir should be kept, got %s", conf.DatabaseDir)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"bogus": logrus.DebugLevel,
	}

	for in, want := range cases {
		if got := LogLevel(in); got != want {
			t.Fatalf("LogLevel(%q) should be %v, not %v", in, want, got)
		}
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reflector.log")

	conf := NewDefaultConfig()
	conf.LogLevel = "info"
	conf.LogFile = path

	conf.Logger().WithField("session", "abc").Info("hello file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file should contain the message, got %q", string(data))
	}
}
