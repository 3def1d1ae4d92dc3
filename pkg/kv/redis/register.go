package redis

import (
	"github.com/inkpost/inkpost-backend/pkg/kv"
)

func init() {
	kv.RegisterBackend(kv.BackendRedis, func(cfg kv.Config) (kv.Store, error) {
		return New(cfg.RedisAddr), nil
	})
}
