package logger

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Logger is a subsystem logger. Messages below the configured level are
// discarded, as is everything written while the backend isn't running.
type Logger struct {
	level uint32 // atomic
	tag   string
	b     *Backend
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.b
}

// Tag returns the subsystem tag of this logger.
func (l *Logger) Tag() string {
	return l.tag
}

func (l *Logger) write(level Level, message string) {
	if level < l.Level() || !l.b.IsRunning() {
		return
	}
	l.b.print(level, l.tag, message)
}

// Tracef formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelTrace.
func (l *Logger) Tracef(format string, params ...interface{}) {
	l.write(LevelTrace, fmt.Sprintf(format, params...))
}

// Debugf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelDebug.
func (l *Logger) Debugf(format string, params ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, params...))
}

// Infof formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelInfo.
func (l *Logger) Infof(format string, params ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, params...))
}

// Warnf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelWarn.
func (l *Logger) Warnf(format string, params ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, params...))
}

// Errorf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelError.
func (l *Logger) Errorf(format string, params ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, params...))
}

// Criticalf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelCritical.
func (l *Logger) Criticalf(format string, params ...interface{}) {
	l.write(LevelCritical, fmt.Sprintf(format, params...))
}

// Infos writes arguments to log with LevelInfo, separated by spaces.
func (l *Logger) Infos(params ...interface{}) {
	l.write(LevelInfo, fmt.Sprint(params...))
}

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

var (
	subsystemLoggersLock sync.Mutex
	subsystemLoggers     = map[string]*Logger{}
)

// RegisterSubSystem returns the logger of the given subsystem tag, creating
// it on first use. Packages call it once, from a package level variable.
func RegisterSubSystem(subsystemTag string) *Logger {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystemTag]
	if !exists {
		logger = BackendLog.Logger(subsystemTag)
		subsystemLoggers[subsystemTag] = logger
	}
	return logger
}

// Get returns a logger of a registered subsystem.
func Get(subsystemTag string) (logger *Logger, ok bool) {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, ok = subsystemLoggers[subsystemTag]
	return logger, ok
}

// SupportedSubsystems returns a sorted slice of the registered subsystem tags.
func SupportedSubsystems() []string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for tag := range subsystemLoggers {
		subsystems = append(subsystems, tag)
	}
	sort.Strings(subsystems)
	return subsystems
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemTag string, logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("Invalid log level %s", logLevel)
	}
	logger, ok := Get(subsystemTag)
	if !ok {
		return nil
	}
	logger.SetLevel(level)
	return nil
}

// SetLogLevels sets the log level for all registered subsystem loggers to the
// passed level.
func SetLogLevels(logLevel string) error {
	for _, subsystemTag := range SupportedSubsystems() {
		err := SetLogLevel(subsystemTag, logLevel)
		if err != nil {
			return err
		}
	}
	return nil
}

// InitLog attaches log file and error log file to the backend log and starts
// it. An empty errLogFile only attaches the main log file.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", logFile, LevelTrace, err)
		os.Exit(1)
	}
	if errLogFile != "" {
		err = BackendLog.AddLogFile(errLogFile, LevelWarn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", errLogFile, LevelWarn, err)
			os.Exit(1)
		}
	}
	err = BackendLog.AddLogWriter(stdoutWriter{}, LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger for level %s: %s", LevelInfo, err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s ", err)
		os.Exit(1)
	}
}

// stdoutWriter writes to os.Stdout and leaves it open on Close.
type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdoutWriter) Close() error {
	return nil
}
