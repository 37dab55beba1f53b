package cache

import (
	"context"
	"strings"
	"time"
)

const (
	cardStatsKey   = "cards:stats"
	cardStatsTTL   = 30 * time.Second
	couponCacheTTL = 5 * time.Minute
)

func couponKey(code string) string {
	return "coupon:" + strings.TrimSpace(code)
}

// GetCardStats 读取卡密库存统计缓存
func GetCardStats(ctx context.Context, dest interface{}) (bool, error) {
	return GetJSON(ctx, cardStatsKey, dest)
}

// SetCardStats 写入卡密库存统计缓存
func SetCardStats(ctx context.Context, value interface{}) error {
	return SetJSON(ctx, cardStatsKey, value, cardStatsTTL)
}

// InvalidateCardStats 卡密变动后失效统计缓存
func InvalidateCardStats(ctx context.Context) error {
	return Del(ctx, cardStatsKey)
}

// GetCoupon 读取优惠码缓存
func GetCoupon(ctx context.Context, code string, dest interface{}) (bool, error) {
	return GetJSON(ctx, couponKey(code), dest)
}

// SetCoupon 写入优惠码缓存
func SetCoupon(ctx context.Context, code string, value interface{}) error {
	return SetJSON(ctx, couponKey(code), value, couponCacheTTL)
}

// InvalidateCoupon 优惠码变更后失效缓存
func InvalidateCoupon(ctx context.Context, codes ...string) error {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) != "" {
			keys = append(keys, couponKey(code))
		}
	}
	return Del(ctx, keys...)
}
