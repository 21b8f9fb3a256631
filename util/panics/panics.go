package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/kaspanet/bluedag/infrastructure/logger"
)

const exitHandlerTimeout = 5 * time.Second

// osExit is replaced in tests.
var (
	osExitDefault = os.Exit
	osExit        = osExitDefault
)

// HandlePanic recovers a panic, logs it together with the stack trace and
// exits the process. It must be deferred directly.
func HandlePanic(log *logger.Logger) {
	err := recover()
	if err == nil {
		return
	}
	exit(log, fmt.Sprintf("Fatal error: %+v", err), debug.Stack())
}

// Exit logs reason, closes the log backend and exits with status 1.
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil)
}

func exit(log *logger.Logger, reason string, stackTrace []byte) {
	exitHandlerDone := make(chan struct{})
	go func() {
		log.Criticalf("Exiting: %s", reason)
		if stackTrace != nil {
			log.Criticalf("Stack trace: %s", stackTrace)
		}
		log.Backend().Close()
		close(exitHandlerDone)
	}()

	select {
	case <-time.After(exitHandlerTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't exit gracefully.")
	case <-exitHandlerDone:
	}
	osExit(1)
}
