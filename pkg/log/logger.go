package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// NewContextWithLogger installs the process logger and returns a context carrying it,
// plus a flush function that drains the non-blocking writer.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	return NewContextWithWriter(ctx, os.Stdout, debug)
}

// NewContextWithWriter is NewContextWithLogger with an explicit destination.
func NewContextWithWriter(ctx context.Context, out io.Writer, debug bool) (context.Context, func()) {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return ""
	}

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// ring buffer of 1000 entries, polled every 5ms
	wr := diode.NewWriter(out, 1000, 5*time.Millisecond, func(missed int) {
		fmt.Printf("Logger Dropped %d messages\n", missed)
	})

	output := zerolog.ConsoleWriter{
		Out:        wr,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(2).
		Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	return log.With().Logger().WithContext(ctx), func() {
		wr.Close()
	}
}

// FromCtx returns the logger stored in ctx, falling back to the process logger
// once NewContextWithLogger has run.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}

