package i

// Logger is the structured logger every component writes through.
type Logger interface {
	Debug(string)
	Info(string)
	Warning(string)
	Error(string)
	// WithFields returns a logger that appends the fields to every line.
	WithFields(map[string]any) Logger
}
