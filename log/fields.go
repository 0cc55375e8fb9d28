package log

import (
	"time"

	"go.uber.org/zap"
)

type Field = zap.Field

var (
	String   = zap.String
	Int      = zap.Int
	Int32    = zap.Int32
	Int64    = zap.Int64
	Uint64   = zap.Uint64
	Float32  = zap.Float32
	Float64  = zap.Float64
	Bool     = zap.Bool
	Any      = zap.Any
	Stringer = zap.Stringer
)

func Duration(key string, d time.Duration) Field {
	return zap.Duration(key, d)
}

func Time(key string, t time.Time) Field {
	return zap.Time(key, t)
}

func ErrorField(err error) Field {
	return zap.Error(err)
}
