package storage

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

func productKey(id string) string      { return "product:" + id }
func pricingRulesKey(id string) string { return "pricing_rules:" + id }

// cached decodes key into dst. Any cache failure is a miss.
func (s *PostgresStorage) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Del(ctx, key)
		return false
	}
	return true
}

func (s *PostgresStorage) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateProduct drops the cached product and its pricing rules.
func (s *PostgresStorage) InvalidateProduct(ctx context.Context, productID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, productKey(productID), pricingRulesKey(productID))
}
