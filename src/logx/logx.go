package logx

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface the engine and shells depend on.
// Anything satisfying it can be injected; production code uses the
// zap-backed Logx below.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})
}

type Logx struct {
	level   zapcore.Level
	dev     bool
	console bool
	sugar   *zap.SugaredLogger
}

// NewLogx prepares a logger; call InitLogger before use. Console mode
// writes human-readable lines to stdout, otherwise JSON goes to the
// supplied writer.
func NewLogx(lvl zapcore.Level, dev bool, console bool) *Logx {
	return &Logx{level: lvl, dev: dev, console: console}
}

// NewNop returns a logger that swallows everything. Tests and library
// consumers that bring no logger get this.
func NewNop() *Logx {
	return &Logx{sugar: zap.NewNop().Sugar()}
}

var levelByName = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}

// LevelByName maps a flag value to a zap level, debug when unknown.
func LevelByName(name string) zapcore.Level {
	if lvl, ok := levelByName[name]; ok {
		return lvl
	}
	return zapcore.DebugLevel
}

func (l *Logx) InitLogger(w io.Writer) {
	var sink zapcore.WriteSyncer
	if l.console {
		sink = zapcore.AddSync(os.Stdout)
	} else {
		sink = zapcore.AddSync(w)
	}

	cfg := zap.NewProductionEncoderConfig()
	if l.dev {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.TimeKey = "ts"
	cfg.LevelKey = "level"
	cfg.CallerKey = "caller"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if l.console {
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		enc = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(l.level))
	l.sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func (l *Logx) Debug(args ...interface{}) { l.sugar.Debug(args...) }

func (l *Logx) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }

func (l *Logx) Info(args ...interface{}) { l.sugar.Info(args...) }

func (l *Logx) Infof(template string, args ...interface{}) { l.sugar.Infof(template, args...) }

func (l *Logx) Warn(args ...interface{}) { l.sugar.Warn(args...) }

func (l *Logx) Warnf(template string, args ...interface{}) { l.sugar.Warnf(template, args...) }

func (l *Logx) Error(args ...interface{}) { l.sugar.Error(args...) }

func (l *Logx) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }

func (l *Logx) Fatal(args ...interface{}) { l.sugar.Fatal(args...) }

func (l *Logx) Fatalf(template string, args ...interface{}) { l.sugar.Fatalf(template, args...) }

// Sync flushes buffered entries, best effort.
func (l *Logx) Sync() {
	if l.sugar != nil {
		_ = l.sugar.Sync()
	}
}
