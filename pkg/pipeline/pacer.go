package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IntervalPacer はシーンが解決した時点から interval が経過するまで次の画像リクエストを待たせます。
// まだ一度も解決していなければ待ちません。
type IntervalPacer struct {
	interval time.Duration

	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewIntervalPacer は IntervalPacer を生成します。interval が 0 以下なら待ちません。
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval, limiter: newIntervalLimiter(interval)}
}

func newIntervalLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Interval は設定された間隔を返します。
func (p *IntervalPacer) Interval() time.Duration {
	return p.interval
}

// Wait は直前の Mark から interval が経過するまで待ちます。
func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()
	return limiter.Wait(ctx)
}

// Mark は間隔の起点を現在時刻にします。トークンを使い切ったリミッターに差し替えるため、
// 次の Wait はここから interval 後まで待ちます。
func (p *IntervalPacer) Mark() {
	limiter := newIntervalLimiter(p.interval)
	limiter.Allow()

	p.mu.Lock()
	p.limiter = limiter
	p.mu.Unlock()
}
