package cache

import (
	"context"
	"crypto/sha1" //nolint:gosec // cache key fingerprint only
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLContentList = 30 * time.Second // 공개 콘텐츠 목록 (자주 갱신)
	TTLContentType = 10 * time.Minute // 스키마 (변경 빈도 낮음)
	TTLSiteContent = 2 * time.Minute
	TTLDefault     = 5 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixContent     = "cms:content:"
	PrefixContentType = "cms:type:"
	PrefixSiteContent = "cms:site:"
)

// ErrMiss is returned when a key is absent or the cache is disabled
var ErrMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// 공개 콘텐츠 목록 캐시 (siteID + contentTypeID + 쿼리 지문)
	GetContentList(ctx context.Context, siteID, contentTypeID, fingerprint string) ([]byte, error)
	SetContentList(ctx context.Context, siteID, contentTypeID, fingerprint string, data interface{}) error
	InvalidateContent(ctx context.Context, siteID, contentTypeID string) error

	// 콘텐츠 타입 캐시
	GetContentType(ctx context.Context, siteID, contentTypeID string) ([]byte, error)
	SetContentType(ctx context.Context, siteID, contentTypeID string, data interface{}) error
	InvalidateContentType(ctx context.Context, siteID, contentTypeID string) error

	// 사이트 콘텐츠 캐시
	GetSiteContent(ctx context.Context, siteID string) ([]byte, error)
	SetSiteContent(ctx context.Context, siteID string, data interface{}) error
	InvalidateSiteContent(ctx context.Context, siteID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현. client 가 nil 이면 모든 연산이 no-op/miss.
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// Fingerprint hashes arbitrary query parts into a short stable key segment
func Fingerprint(parts ...interface{}) string {
	h := sha1.New() //nolint:gosec
	for _, p := range parts {
		fmt.Fprintf(h, "%v|", p)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.getBytes(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) getBytes(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, ErrMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// ========================================
// 콘텐츠 목록 캐시
// ========================================

func contentKey(siteID, contentTypeID, fingerprint string) string {
	return fmt.Sprintf("%s%s:%s:%s", PrefixContent, siteID, contentTypeID, fingerprint)
}

// contentPattern SCAN 패턴; siteID 의 glob 문자는 이스케이프 (contentTypeID "*" 는 전체)
func contentPattern(siteID, contentTypeID string) string {
	if contentTypeID != "*" {
		contentTypeID = escapeGlob(contentTypeID)
	}
	return fmt.Sprintf("%s%s:%s:*", PrefixContent, escapeGlob(siteID), contentTypeID)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// escapeGlob makes s match literally inside a Redis MATCH pattern
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func (c *redisCache) GetContentList(ctx context.Context, siteID, contentTypeID, fingerprint string) ([]byte, error) {
	return c.getBytes(ctx, contentKey(siteID, contentTypeID, fingerprint))
}

func (c *redisCache) SetContentList(ctx context.Context, siteID, contentTypeID, fingerprint string, data interface{}) error {
	return c.Set(ctx, contentKey(siteID, contentTypeID, fingerprint), data, TTLContentList)
}

func (c *redisCache) InvalidateContent(ctx context.Context, siteID, contentTypeID string) error {
	if c.client == nil {
		return nil
	}
	if err := c.deleteByPattern(ctx, contentPattern(siteID, contentTypeID)); err != nil {
		return err
	}
	// 사이트 전체 검색 결과도 무효화
	return c.deleteByPattern(ctx, contentPattern(siteID, "*"))
}

// ========================================
// 콘텐츠 타입 캐시
// ========================================

func contentTypeKey(siteID, contentTypeID string) string {
	return PrefixContentType + siteID + ":" + contentTypeID
}

func (c *redisCache) GetContentType(ctx context.Context, siteID, contentTypeID string) ([]byte, error) {
	return c.getBytes(ctx, contentTypeKey(siteID, contentTypeID))
}

func (c *redisCache) SetContentType(ctx context.Context, siteID, contentTypeID string, data interface{}) error {
	return c.Set(ctx, contentTypeKey(siteID, contentTypeID), data, TTLContentType)
}

func (c *redisCache) InvalidateContentType(ctx context.Context, siteID, contentTypeID string) error {
	return c.Delete(ctx, contentTypeKey(siteID, contentTypeID))
}

// ========================================
// 사이트 콘텐츠 캐시
// ========================================

func (c *redisCache) GetSiteContent(ctx context.Context, siteID string) ([]byte, error) {
	return c.getBytes(ctx, PrefixSiteContent+siteID)
}

func (c *redisCache) SetSiteContent(ctx context.Context, siteID string, data interface{}) error {
	return c.Set(ctx, PrefixSiteContent+siteID, data, TTLSiteContent)
}

func (c *redisCache) InvalidateSiteContent(ctx context.Context, siteID string) error {
	return c.Delete(ctx, PrefixSiteContent+siteID)
}
