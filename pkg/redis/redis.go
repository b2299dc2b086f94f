package redis

import (
	"CallWaitingAI/pkg/outbound"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const lastReplyTTL = 30 * time.Minute

type IRedis interface {
	SetLastReply(ctx context.Context, sessionID string, text string) error
	GetLastReply(ctx context.Context, sessionID string) (string, error)
}

type redisClient struct {
	client *redis.Client
}

func New() (IRedis, error) {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	if redisAddr == "" {
		return nil, outbound.ErrNotConfigured
	}

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}, nil
}

func lastReplyKey(sessionID string) string {
	return "session:" + sessionID + ":last_reply"
}

func (r *redisClient) SetLastReply(ctx context.Context, sessionID string, text string) error {
	if err := r.client.Set(ctx, lastReplyKey(sessionID), text, lastReplyTTL).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error caching last reply for session %s: %v", sessionID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetLastReply(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, lastReplyKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading last reply for session %s: %v", sessionID, err))
		return "", err
	}
	return val, nil
}
