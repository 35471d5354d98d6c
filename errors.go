package qmap

import "go.uber.org/zap"

// fatalf logs msg at Fatal level and terminates the process, the direct
// analogue of the original engine's CBUG() macro: allocation failure,
// capacity exhaustion on Put, and a mask that isn't 2^n-1 are all fatal
// conditions with no error-value escape hatch, per spec.
func (e *Engine) fatalf(msg string, fields ...zap.Field) {
	e.log.Fatal(msg, fields...)
	// zap.Logger.Fatal calls os.Exit(1); this line is unreachable in
	// production but keeps control flow obvious to readers and to any
	// logger substituted in tests that doesn't itself exit.
	panic(msg)
}
