package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs the start of functionName at debug level and
// returns a function that logs its end together with the elapsed time.
//
// Deferred at the top of a function so that the measured time includes lock
// acquisition, as in BlockDAG.Classify and BlockDAG.ProcessBatch:
//
// 	defer logger.LogAndMeasureExecutionTime(log, "Classify")()
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}
