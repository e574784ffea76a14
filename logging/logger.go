package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	// usable before BoostrapLogger runs, e.g. from tests
	Log = logrus.New()
}

// BoostrapLogger configures the package logger. An unknown level falls back
// to debug, any format other than "json" gives text output.
func BoostrapLogger(level, format string) {
	var formatter logrus.Formatter = &logrus.TextFormatter{
		DisableColors:    false,
		DisableQuote:     false,
		DisableTimestamp: false,
		FullTimestamp:    true,
		TimestampFormat:  "",
	}
	if strings.EqualFold(format, "json") {
		formatter = &logrus.JSONFormatter{}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}

	Log = &logrus.Logger{
		Out:          os.Stdout,
		Hooks:        make(logrus.LevelHooks),
		Formatter:    formatter,
		ReportCaller: true,
		Level:        lvl,
		ExitFunc:     os.Exit,
	}
}
