package optsim

type Logger interface {
	Info(message string, module string)
	Error(string)
}

// nopLogger is used when a component is built without a logger.
type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Error(string)        {}

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
