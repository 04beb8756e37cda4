package logging

import (
	"github.com/sirupsen/logrus"
	"os"
)

// Log is replaced by BootstrapLogger at start; the default keeps packages usable from tests.
var Log = logrus.New()

// BootstrapLogger configures Log for the running service. An unknown level falls back to debug.
func BootstrapLogger(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}

	Log = &logrus.Logger{
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Formatter: &logrus.TextFormatter{
			DisableColors:    false,
			DisableQuote:     false,
			DisableTimestamp: false,
			FullTimestamp:    true,
			TimestampFormat:  "2006-01-02 15:04:05",
		},
		ReportCaller: true,
		Level:        lvl,
		ExitFunc:     os.Exit,
	}

	if err != nil && level != "" {
		Log.Warnf("unknown log level %q, using debug", level)
	}
}
