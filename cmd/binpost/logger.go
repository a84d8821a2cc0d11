package main

import (
	"fmt"
	"os"
)

// cliLogger writes install progress to stderr, keeping stdout clean for the
// command's own output.
type cliLogger struct {
	verbose bool
}

func newCLILogger(verbose bool) *cliLogger {
	return &cliLogger{verbose: verbose}
}

func (l *cliLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.verbose {
		l.print("debug", msg, keysAndValues)
	}
}

func (l *cliLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.verbose {
		l.print("info", msg, keysAndValues)
	}
}

func (l *cliLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.print("warning", msg, keysAndValues)
}

func (l *cliLogger) Error(msg string, keysAndValues ...interface{}) {
	l.print("error", msg, keysAndValues)
}

func (l *cliLogger) print(level, msg string, keysAndValues []interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(os.Stderr, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	fmt.Fprintln(os.Stderr)
}
