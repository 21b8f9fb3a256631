package logger

import (
	"bytes"
	"strings"
	"testing"
)

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (cb *closableBuffer) Close() error {
	cb.closed = true
	return nil
}

func TestLoggerLevels(t *testing.T) {
	backend := NewBackendWithFlags(0)
	buffer := &closableBuffer{}
	err := backend.AddLogWriter(buffer, LevelDebug)
	if err != nil {
		t.Fatalf("TestLoggerLevels: AddLogWriter unexpectedly failed: %s", err)
	}
	log := backend.Logger("TEST")

	// Nothing is written before the backend runs.
	log.SetLevel(LevelTrace)
	log.Infof("dropped %d", 1)

	err = backend.Run()
	if err != nil {
		t.Fatalf("TestLoggerLevels: Run unexpectedly failed: %s", err)
	}
	if err := backend.Run(); err == nil {
		t.Fatalf("TestLoggerLevels: second Run unexpectedly succeeded")
	}
	if err := backend.AddLogWriter(&closableBuffer{}, LevelInfo); err == nil {
		t.Fatalf("TestLoggerLevels: AddLogWriter on a running backend unexpectedly succeeded")
	}

	log.SetLevel(LevelInfo)
	log.Debugf("filtered by the logger")
	log.Infof("block %s is blue", "B")
	log.SetLevel(LevelTrace)
	log.Tracef("filtered by the writer")
	log.Warnf("inconsistency in %s", "H")
	backend.Close()

	output := buffer.String()
	if strings.Contains(output, "dropped") || strings.Contains(output, "filtered") {
		t.Fatalf("TestLoggerLevels: unexpected line in output:\n%s", output)
	}
	if !strings.Contains(output, "[INF] TEST: block B is blue\n") {
		t.Fatalf("TestLoggerLevels: missing info line in output:\n%s", output)
	}
	if !strings.Contains(output, "[WRN] TEST: inconsistency in H\n") {
		t.Fatalf("TestLoggerLevels: missing warn line in output:\n%s", output)
	}
	if !buffer.closed {
		t.Fatalf("TestLoggerLevels: writer was not closed")
	}
	if backend.IsRunning() {
		t.Fatalf("TestLoggerLevels: backend is still running after Close")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"DBG", LevelDebug, true},
		{" info ", LevelInfo, true},
		{"wrn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.ok {
			t.Errorf("TestLevelFromString: %q: expected (%s, %t), got (%s, %t)",
				test.input, test.expected, test.ok, level, ok)
		}
	}
}

func TestRegisterSubSystem(t *testing.T) {
	first := RegisterSubSystem("TSTR")
	second := RegisterSubSystem("TSTR")
	if first != second {
		t.Fatalf("TestRegisterSubSystem: expected the same logger for the same tag")
	}
	if first.Level() != LevelOff {
		t.Fatalf("TestRegisterSubSystem: expected a new logger to be off, got %s", first.Level())
	}

	err := SetLogLevel("TSTR", "debug")
	if err != nil {
		t.Fatalf("TestRegisterSubSystem: SetLogLevel unexpectedly failed: %s", err)
	}
	if first.Level() != LevelDebug {
		t.Fatalf("TestRegisterSubSystem: expected level %s, got %s", LevelDebug, first.Level())
	}
	if err := SetLogLevels("loud"); err == nil {
		t.Fatalf("TestRegisterSubSystem: SetLogLevels accepted an invalid level")
	}

	found := false
	for _, tag := range SupportedSubsystems() {
		if tag == "TSTR" {
			found = true
		}
	}
	if !found {
		t.Fatalf("TestRegisterSubSystem: TSTR missing from SupportedSubsystems")
	}
}

func TestLogAndMeasureExecutionTime(t *testing.T) {
	backend := NewBackendWithFlags(0)
	buffer := &closableBuffer{}
	err := backend.AddLogWriter(buffer, LevelDebug)
	if err != nil {
		t.Fatalf("TestLogAndMeasureExecutionTime: AddLogWriter unexpectedly failed: %s", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("TestLogAndMeasureExecutionTime: Run unexpectedly failed: %s", err)
	}
	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)

	func() {
		defer LogAndMeasureExecutionTime(log, "Classify")()
		log.Infof("classifying")
	}()
	backend.Close()

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("TestLogAndMeasureExecutionTime: expected 3 lines, got:\n%s", buffer.String())
	}
	if !strings.HasSuffix(lines[0], "[DBG] TEST: Classify start") ||
		!strings.HasSuffix(lines[1], "[INF] TEST: classifying") ||
		!strings.Contains(lines[2], "[DBG] TEST: Classify end. Took: ") {
		t.Fatalf("TestLogAndMeasureExecutionTime: unexpected output:\n%s", buffer.String())
	}
}
