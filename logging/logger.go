package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// BootstrapLogger configures the shared logger. Unknown levels fall back to debug,
// format "json" switches to the JSON formatter used behind log shippers.
func BootstrapLogger(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.DebugLevel
	}

	var formatter logrus.Formatter = &logrus.TextFormatter{
		DisableColors:    false,
		DisableQuote:     false,
		DisableTimestamp: false,
		FullTimestamp:    true,
	}
	if strings.EqualFold(format, "json") {
		formatter = &logrus.JSONFormatter{}
	}

	Log = &logrus.Logger{
		Out:       os.Stdout,
		Hooks:     make(logrus.LevelHooks),
		Formatter: formatter,
		Level:     lvl,
		ExitFunc:  os.Exit,
	}
	Log.SetReportCaller(true)
}
