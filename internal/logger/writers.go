package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// WriterStrategy defines interface for creating log writers
type WriterStrategy interface {
	CreateWriter(output io.Writer) io.Writer
}

// JSONWriterStrategy creates JSON formatted writers
type JSONWriterStrategy struct{}

// CreateWriter creates a JSON writer
func (jws *JSONWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return output
}

// ConsoleWriterStrategy creates console formatted writers
type ConsoleWriterStrategy struct {
	NoColor bool
}

// CreateWriter creates a console writer
func (cws *ConsoleWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: TimestampFormat,
		NoColor:    cws.NoColor,
	}
}

// TextWriterStrategy creates plain single-line writers: "<timestamp> <LEVEL> <message> key=value..."
type TextWriterStrategy struct{}

// CreateWriter creates a text writer
func (tws *TextWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:         output,
		TimeFormat:  TimestampFormat,
		NoColor:     true,
		FormatLevel: formatLevelTag,
	}
}

// NewTextWriter returns the text format writer for output, for use before a Logger is built.
func NewTextWriter(output io.Writer) io.Writer {
	return (&TextWriterStrategy{}).CreateWriter(output)
}

func formatLevelTag(i interface{}) string {
	level, ok := i.(string)
	if !ok || level == "" {
		return "[-----]"
	}
	return fmt.Sprintf("[%-5s]", strings.ToUpper(level))
}
