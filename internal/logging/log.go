package logging

import (
	"io"
	"log"
	"os"
)

type Logger interface {
	Println(v ...any)
	Printf(format string, v ...any)
	Print(v ...any)
}

type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) Println(v ...any) {
	s.l.Println(v...)
}
func (s *stdLogger) Printf(format string, v ...any) {
	s.l.Printf(format, v...)
}
func (s *stdLogger) Print(v ...any) {
	s.l.Print(v...)
}

// New returns a Logger writing to w with the given prefix.
func New(w io.Writer, prefix string) Logger {
	return &stdLogger{log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)}
}

var DefaultLogger Logger = New(os.Stderr, "")

// Discard drops everything. Used by tests.
var Discard Logger = New(io.Discard, "")
