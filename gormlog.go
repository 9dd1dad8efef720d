package batchdb

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

// gormLogAdapter routes the engine's internal log output into zerolog.
type gormLogAdapter struct {
	debug bool
	log   zerolog.Logger
}

func (l *gormLogAdapter) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *gormLogAdapter) Info(_ context.Context, format string, v ...interface{}) {
	if l.debug {
		l.log.Info().Msgf("gorm: "+format, v...)
	}
}

func (l *gormLogAdapter) Warn(_ context.Context, format string, v ...interface{}) {
	l.log.Warn().Msgf("gorm: "+format, v...)
}

func (l *gormLogAdapter) Error(_ context.Context, format string, v ...interface{}) {
	l.log.Error().Msgf("gorm: "+format, v...)
}

func (l *gormLogAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if !l.debug {
		return
	}
	sql, rows := fc()
	l.log.Debug().
		Err(err).
		Dur("elapsed", time.Since(begin)).
		Int64("rows", rows).
		Msg(sql)
}
