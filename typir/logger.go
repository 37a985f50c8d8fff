package typir

// Logger is the minimal ambient logging surface the engine logs through:
// its multi-pass, event-driven machinery benefits from a trace of state
// transitions and rule dispatch during development. A nil Logger in
// Config is replaced with a no-op implementation, so the core packages
// never depend on a concrete logging library; cmd/typirctl wires one
// backed by logrus.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
