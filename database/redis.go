package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/domain"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// ReservationKeyPrefix namespaces reservation keys; the key TTL is the lease.
const ReservationKeyPrefix = "necoport:reservation:"

const scanBatch = 100

type ReservationRedis struct {
	*redis.Client
}

func reservationKey(name string) string {
	return ReservationKeyPrefix + name
}

// GetReservation loads a reservation, or domain.ErrReservationNotFound.
func (r ReservationRedis) GetReservation(ctx context.Context, name string) (*domain.Reservation, error) {
	raw, err := r.Get(ctx, reservationKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}

	var reservation domain.Reservation
	if err := json.Unmarshal(raw, &reservation); err != nil {
		return nil, fmt.Errorf("failed to decode reservation %s: %w", name, err)
	}
	return &reservation, nil
}

// SaveReservation writes a reservation that expires with its lease.
// A reservation whose lease already ran out is deleted instead.
func (r ReservationRedis) SaveReservation(ctx context.Context, reservation domain.Reservation) error {
	ttl := reservation.TTL(time.Now())
	if ttl <= 0 {
		return r.DeleteReservation(ctx, reservation.Name)
	}

	raw, err := json.Marshal(reservation)
	if err != nil {
		return fmt.Errorf("failed to encode reservation %s: %w", reservation.Name, err)
	}
	return r.Set(ctx, reservationKey(reservation.Name), raw, ttl).Err()
}

func (r ReservationRedis) DeleteReservation(ctx context.Context, name string) error {
	return r.Del(ctx, reservationKey(name)).Err()
}

// ListReservations returns every live reservation key, unordered.
func (r ReservationRedis) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	var keys []string
	iter := r.Scan(ctx, 0, ReservationKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan reservations: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	reservations := make([]domain.Reservation, 0, len(values))
	for i, value := range values {
		// expired between SCAN and MGET
		str, ok := value.(string)
		if !ok {
			continue
		}
		var reservation domain.Reservation
		if err := json.Unmarshal([]byte(str), &reservation); err != nil {
			log.Printf("Redis: skipping undecodable reservation %s: %v", keys[i], err)
			continue
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

// InitRedis initializes the Redis client connection
func InitRedis(cfg *config.RedisConfig) error {
	opts := &redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	redisClient = client
	log.Println("Redis connection established successfully")
	return nil
}

// CloseRedis closes the Redis client connection
func CloseRedis() error {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
		redisClient = nil
		log.Println("Redis connection closed")
	}
	return nil
}

// RedisHealthCheck verifies that the Redis connection is alive
func RedisHealthCheck(ctx context.Context) error {
	if redisClient == nil {
		return fmt.Errorf("Redis connection is not initialized")
	}
	return redisClient.Ping(ctx).Err()
}

func GetRedisClient() ReservationRedis {
	return ReservationRedis{redisClient}
}
