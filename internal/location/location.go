package location

import (
	"context"
	"time"
)

// Provider 定位来源（浏览器回传、固定坐标等）
type Provider interface {
	Locate(ctx context.Context) (lat, lon *float64, err error)
}

// Bounded 给任意 Provider 套上限时：超时或失败一律回退为 (nil, nil)
// 定位永远不能阻塞表单提交。
type Bounded struct {
	provider Provider
	timeout  time.Duration
}

// NewBounded 创建限时定位包装
func NewBounded(p Provider, timeout time.Duration) *Bounded {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Bounded{provider: p, timeout: timeout}
}

// Locate 返回可选坐标，从不返回错误
func (b *Bounded) Locate(ctx context.Context) (*float64, *float64) {
	if b.provider == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		lat, lon *float64
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		lat, lon, err := b.provider.Locate(ctx)
		ch <- result{lat, lon, err}
	}()

	select {
	case <-ctx.Done():
		return nil, nil
	case r := <-ch:
		if r.err != nil {
			return nil, nil
		}
		return r.lat, r.lon
	}
}

// Static 固定坐标 Provider（固定站点的部署和测试使用）
type Static struct {
	Lat float64
	Lon float64
}

func (s Static) Locate(ctx context.Context) (*float64, *float64, error) {
	lat, lon := s.Lat, s.Lon
	return &lat, &lon, nil
}
