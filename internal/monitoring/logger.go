// Package monitoring holds the diagnostic logger shared by the pipeline and CLIs.
package monitoring

import (
	"io"
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// is replaced by Configure or SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Configure points Logf at w with the given line prefix, or mutes it when
// quiet is set.
func Configure(w io.Writer, prefix string, quiet bool) {
	if quiet {
		SetLogger(nil)
		return
	}
	SetLogger(log.New(w, prefix, log.LstdFlags).Printf)
}

// Timed logs how long a pipeline stage took when the returned func is called.
//
//	defer monitoring.Timed("detect")()
func Timed(stage string) func() {
	start := time.Now()
	return func() {
		Logf("%s: done in %s", stage, time.Since(start).Round(time.Microsecond))
	}
}
