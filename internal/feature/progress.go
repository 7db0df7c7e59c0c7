package feature

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultProgressInterval is the minimum time between progress reports.
const DefaultProgressInterval = 2 * time.Second

// Progress logs percentage complete, at most once per interval.
// It is safe for concurrent use.
type Progress struct {
	logger *slog.Logger
	msg    string
	s      rate.Sometimes
}

// NewProgress creates a reporter that logs msg at Info level.
func NewProgress(logger *slog.Logger, msg string, interval time.Duration) *Progress {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &Progress{logger: logger, msg: msg, s: rate.Sometimes{Interval: interval}}
}

// Report records that done of total items are finished. The final item is
// always logged.
func (p *Progress) Report(done, total int) {
	if p == nil || total == 0 {
		return
	}
	if done == total {
		p.log(done, total)
		return
	}
	p.s.Do(func() { p.log(done, total) })
}

func (p *Progress) log(done, total int) {
	pct := 100 * float64(done) / float64(total)
	p.logger.Info(p.msg, "done", done, "total", total, "percent", float64(int(pct*10))/10)
}
