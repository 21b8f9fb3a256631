package panics

import (
	"testing"

	"github.com/kaspanet/bluedag/infrastructure/logger"
)

func TestHandlePanic(t *testing.T) {
	exitCode := -1
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = osExitDefault }()

	log := logger.NewBackend().Logger("TEST")
	func() {
		defer HandlePanic(log)
		panic("boom")
	}()
	if exitCode != 1 {
		t.Fatalf("TestHandlePanic: expected exit code 1, got %d", exitCode)
	}

	exitCode = -1
	func() {
		defer HandlePanic(log)
	}()
	if exitCode != -1 {
		t.Fatalf("TestHandlePanic: exited without a panic")
	}

	Exit(log, "done")
	if exitCode != 1 {
		t.Fatalf("TestHandlePanic: expected Exit to exit with code 1, got %d", exitCode)
	}
}
