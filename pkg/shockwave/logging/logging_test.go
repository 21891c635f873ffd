package logging

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/sirupsen/logrus"
)

func TestNewParsesLevel(t *testing.T) {
	l := New("debug")
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("GetLevel = %v, want %v", l.GetLevel(), logrus.DebugLevel)
	}
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	l := New("not-a-level")
	if l.GetLevel() != logrus.InfoLevel {
		t.Errorf("GetLevel = %v, want %v", l.GetLevel(), logrus.InfoLevel)
	}
}

func TestHCLogBridgeWritesThroughLogrus(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)

	bridge := NewHCLogBridge(base)
	bridge.Info("hello from hclog")

	if !bytes.Contains(buf.Bytes(), []byte("hello from hclog")) {
		t.Errorf("output missing message: %q", buf.String())
	}
}

func TestHCLogBridgeNamedAddsField(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	bridge := NewHCLogBridge(base).Named("shockwave")
	bridge.Info("started")

	if !bytes.Contains(buf.Bytes(), []byte(`"name":"shockwave"`)) {
		t.Errorf("output missing name field: %q", buf.String())
	}
}

func TestHCLogBridgeLevelRoundTrip(t *testing.T) {
	bridge := NewHCLogBridge(logrus.New())
	bridge.SetLevel(hclog.Warn)
	if bridge.GetLevel() != hclog.Warn {
		t.Errorf("GetLevel = %v, want %v", bridge.GetLevel(), hclog.Warn)
	}
}
