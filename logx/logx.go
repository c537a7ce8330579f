package logx

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Level resolves the log level from command flags and the TETHER_LOG
// variable. Flags win over the environment.
func Level(verbose, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.ErrorLevel
	case verbose:
		return zerolog.DebugLevel
	}
	if env := os.Getenv("TETHER_LOG"); env != "" {
		if lvl, err := zerolog.ParseLevel(env); err == nil {
			return lvl
		}
	}
	return zerolog.WarnLevel
}

// Console returns a logger writing human-readable lines to w.
func Console(w io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: noColor}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ToFile returns a logger appending JSON lines to the tether log file
// under the user cache dir. The picker logs there so output cannot tear
// the terminal while tcell owns the screen. The caller closes the file.
func ToFile(level zerolog.Level) (zerolog.Logger, *os.File, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	dir = filepath.Join(dir, "tether")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return zerolog.Nop(), nil, err
	}
	path := filepath.Join(dir, "tether.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f, nil
}
