// Package g holds process-wide state shared by the launcher packages.
package g

import (
	"github.com/Boxjan/golib/logs"
)

var log *logs.Logger

// GetLog returns the launcher logger. A logger created here has no adapter,
// so nothing is written until SetLog installs a configured one.
func GetLog() *logs.Logger {
	if log == nil {
		log = logs.NewLogger()
	}
	return log
}

func SetLog(logger *logs.Logger) {
	if log != nil && logger != log {
		log.Debug("logger will be change")
	}
	log = logger
}

func CloseLog() {
	if log != nil {
		log.Debug("will stop use this logger now")
		log = nil
	}
}

// NewLogger builds the launcher logger on stderr. Once descriptors are
// sanitized stderr is the target program's stdout, so without verbose only
// warnings are written.
func NewLogger(verbose bool) *logs.Logger {
	level := logs.LevelWarningStr
	if verbose {
		level = logs.LevelTraceStr
	}
	logger := logs.NewLogger()
	if err := logger.AddAdapter(logs.AdapterConsole, level, `{}`); err != nil {
		return logs.NewLoggerWithCmdWriter()
	}
	return logger
}
