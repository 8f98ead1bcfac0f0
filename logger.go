package gracecache

// Fields carries structured context for a log line. Keys used by the
// repository: key, format, readable, expiresAt, extendedTo, policy, extension,
// error.
type Fields map[string]any

// Logger receives the repository's own events. Extensions and provider
// rejections log at Debug; a failed extension write logs at Warn before the
// provider error is returned. Adapters for zap, logrus and slog live under
// log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger is used when Options.Logger is nil.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
