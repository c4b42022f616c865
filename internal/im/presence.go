package im

import (
	"Duet/internal/pkg/consts"
	"Duet/internal/pkg/redis"
	"context"
	"strconv"
	"time"
)

// 在线键带 TTL 兜底，进程异常退出后镜像最终会自愈
const presenceTTL = 24 * time.Hour

type redisPresenceStore struct{}

func NewRedisPresenceStore() PresenceStore {
	return &redisPresenceStore{}
}

func (s *redisPresenceStore) SetOnline(ctx context.Context, userID uint64) error {
	return redis.SetWithExpiration(ctx, consts.UserOnlineKey+strconv.FormatUint(userID, 10), "1", presenceTTL)
}

func (s *redisPresenceStore) SetOffline(ctx context.Context, userID uint64) error {
	return redis.DeleteKey(ctx, consts.UserOnlineKey+strconv.FormatUint(userID, 10))
}
