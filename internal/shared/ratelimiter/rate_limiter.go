package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiterは、interval ごとに limit 回まで操作を許可する固定ウィンドウ方式のリミッターです。
// 複数のゴルーチンから同時に利用できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// reserve は枠を1つ確保し、その枠が属するウィンドウの開始まで待つ必要がある時間を返します。
// 上限を超えた呼び出しは後続のウィンドウの枠を順に先取りするため、どのウィンドウでも limit 回を超えません。
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// 経過したウィンドウ分の枠を消化する
	if elapsed := now.Sub(rl.lastReset); elapsed >= rl.interval {
		windows := int(elapsed / rl.interval)
		consumed := windows * rl.limit
		if rl.count <= consumed {
			rl.count = 0
			rl.lastReset = now
		} else {
			rl.count -= consumed
			rl.lastReset = rl.lastReset.Add(time.Duration(windows) * rl.interval)
		}
	}

	rl.count++
	window := rl.lastReset.Add(time.Duration((rl.count-1)/rl.limit) * rl.interval)
	if wait := window.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Waitはレートリミットの上限に達しているかを確認し、必要であれば待機します。
// ctx がキャンセルされた場合は待機を中断してエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return nil
	}
	wait := rl.reserve()
	if wait <= 0 {
		return nil
	}
	slog.Info("rate limit reached, waiting", "limit", rl.limit, "wait", wait)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
