// Package monitoring holds the detectors' swappable diagnostic logger.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced with SetLogger, for example to mute detectors in tests.
// Replace it before starting detection; it is read concurrently.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// ReportCount logs how many items of a kind a detector produced, e.g.
// "3 gait sequence(s) detected.".
func ReportCount(n int, noun string) {
	Logf("%d %s(s) detected.", n, noun)
}
