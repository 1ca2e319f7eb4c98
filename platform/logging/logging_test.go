package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure(t *testing.T) {
	l := logrus.New()

	Configure(l, "debug", "json")
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected a JSON formatter, got %T", l.Formatter)
	}

	Configure(l, "loud", "")
	if l.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected unknown levels to fall back to info, got %v", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("Expected a text formatter, got %T", l.Formatter)
	}
}

func TestNewTagsComponent(t *testing.T) {
	entry := New("rooms")
	if entry.Data["component"] != "rooms" {
		t.Errorf("Expected component=rooms, got %v", entry.Data["component"])
	}
}
