// Package logger configures the global zerolog logger: per-level output
// routing, optional console rendering, rolling log files and a prometheus
// counter hook.
package logger

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// levelWriter routes each log statement to the writer registered for its
// level band: trace, info (debug+info), warn, and error (error and up).
type levelWriter struct {
	io.Writer
	trace io.Writer
	info  io.Writer
	warn  io.Writer
	err   io.Writer
}

func (lw *levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l == zerolog.Disabled {
		return 0, nil
	}

	var w io.Writer

	switch {
	case l == zerolog.TraceLevel:
		w = lw.trace
	case l == zerolog.WarnLevel:
		w = lw.warn
	case l > zerolog.WarnLevel:
		w = lw.err
	default:
		w = lw.info
	}

	return w.Write(p) //nolint:wrapcheck
}

// Init configures the global zerolog logger from the Log config section.
// With neither console nor file logging enabled nothing is written.
func Init(cfg Log) error {
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "loglevel %s is not supported", cfg.LogLevel)
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	// trace level carries full error stacks
	stack := logLevel == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(logLevel)

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, consoleWriter(cfg))
	}

	if cfg.File.Enabled {
		writers = append(writers, rollingFileWriter(cfg))
	}

	base := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(newPrometheusHook(cfg.ServiceName)).
		With().Timestamp()

	switch {
	case cfg.ReportCaller && stack:
		log.Logger = base.Stack().Logger()
	case cfg.ReportCaller:
		log.Logger = base.Caller().Logger()
	default:
		log.Logger = base.Logger()
	}

	return nil
}

// rollingFileWriter builds a levelWriter over one lumberjack rolling file per
// level band.
func rollingFileWriter(cfg Log) io.Writer {
	if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint: mnd
		log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

		return nil
	}

	return &levelWriter{
		trace: rollingFile(cfg.File.Path, cfg.File.TraceLog, cfg.File.TraceMaxSize, cfg.File.TraceMaxAge, cfg.File.TraceMaxBackups),
		info:  rollingFile(cfg.File.Path, cfg.File.InfoLog, cfg.File.InfoMaxSize, cfg.File.InfoMaxAge, cfg.File.InfoMaxBackups),
		warn:  rollingFile(cfg.File.Path, cfg.File.WarnLog, cfg.File.WarnMaxSize, cfg.File.WarnMaxAge, cfg.File.WarnMaxBackups),
		err:   rollingFile(cfg.File.Path, cfg.File.ErrorLog, cfg.File.ErrorMaxSize, cfg.File.ErrorMaxAge, cfg.File.ErrorMaxBackups),
	}
}

func rollingFile(dir, name string, maxSize, maxAge, maxBackups int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, name),
		MaxSize:    maxSize,
		MaxAge:     maxAge,
		MaxBackups: maxBackups,
	}
}

// consoleWriter routes info to stdout and everything else to stderr, either
// raw JSON or through the zerolog console renderer.
func consoleWriter(cfg Log) io.Writer {
	if !cfg.Console.UseConsoleWriter {
		return &levelWriter{
			trace: os.Stderr,
			info:  os.Stdout,
			warn:  os.Stderr,
			err:   os.Stderr,
		}
	}

	render := func(out *os.File) io.Writer {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	return &levelWriter{
		trace: render(os.Stderr),
		info:  render(os.Stdout),
		warn:  render(os.Stderr),
		err:   render(os.Stderr),
	}
}
