package mapcmd

import (
	"log"
	"time"

	"golang.org/x/time/rate"
)

// warnLog rate limits protocol warnings so that a corrupt stream cannot
// flood the log.
type warnLog struct {
	logger     *log.Logger
	limiter    *rate.Limiter
	suppressed int
}

func newWarnLog(l *log.Logger) *warnLog {
	if l == nil {
		l = log.Default()
	}
	return &warnLog{
		logger:  l,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 20),
	}
}

func (w *warnLog) printf(format string, v ...any) {
	if !w.limiter.Allow() {
		w.suppressed++
		return
	}
	if w.suppressed > 0 {
		w.logger.Printf("mapcmd: %d warnings suppressed", w.suppressed)
		w.suppressed = 0
	}
	w.logger.Printf(format, v...)
}
