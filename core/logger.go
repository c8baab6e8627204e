package core

import "log"

// Logger reports application events; the Error variants may receive extra
// context args (e.g. the authenticated identity) picked up by richer backends.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
}

type stdLogger struct {
	std *log.Logger
}

func NewStdLogger(std *log.Logger) Logger {
	return &stdLogger{std: std}
}

func (l stdLogger) Info(msg string, args ...interface{}) {
	l.std.Printf("INFO: %s %v", msg, args)
}

func (l stdLogger) Error(msg string, err error, args ...interface{}) {
	l.std.Printf("ERROR: %s: %+v %v", msg, err, args)
}
