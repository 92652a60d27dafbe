package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const attendanceTokenPrefix = "attendance:token:"

// TokenRepository хранит клиентские токены отметок в Redis, по одному на студента и курс
type TokenRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenRepository(client *redis.Client, ttl time.Duration) *TokenRepository {
	return &TokenRepository{client: client, ttl: ttl}
}

// Get возвращает токен студента по курсу или пустую строку
func (r *TokenRepository) Get(ctx context.Context, telegramID int64, courseCode string) (string, error) {
	token, err := r.client.Get(ctx, tokenKey(telegramID, courseCode)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get attendance token: %w", err)
	}
	return token, nil
}

// Set заменяет токен студента по курсу
func (r *TokenRepository) Set(ctx context.Context, telegramID int64, courseCode, token string) error {
	if err := r.client.Set(ctx, tokenKey(telegramID, courseCode), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("set attendance token: %w", err)
	}
	return nil
}

// tokenKey: attendance:token:{telegramID}:{courseCode}
func tokenKey(telegramID int64, courseCode string) string {
	return attendanceTokenPrefix + strconv.FormatInt(telegramID, 10) + ":" + courseCode
}
