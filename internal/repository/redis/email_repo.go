package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	CodeResetPrefix     = "email:code:reset"

	// 两阶段键：邮件发出前为 pending，发出后转为 confirmed
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrCodeNotFound        = errors.New("code not found or expired")
	ErrCodeConfirmedFailed = errors.New("code confirm failed")
)

// 原子执行：取值 + 写入目标并设置 TTL + 删除源
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

// 原子执行：比对成功才删除，保证验证码只能用一次
var consumeScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return -1
end
if val ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// ResetCodeRepository 找回密码验证码
type ResetCodeRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func (r *ResetCodeRepository) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultEmailCodeTTL
}

func resetKey(suffix, email string) string {
	return fmt.Sprintf("%s:%s:%s", CodeResetPrefix, suffix, email)
}

func (r *ResetCodeRepository) SavePending(ctx context.Context, email, code string) error {
	return r.RDB.Set(ctx, resetKey(PendingSuffix, email), code, r.ttl()).Err()
}

// Confirm 邮件发送成功后把 pending 转为 confirmed，并重置 TTL
func (r *ResetCodeRepository) Confirm(ctx context.Context, email string) error {
	px := int64(r.ttl() / time.Millisecond)
	ok, err := promoteScript.Run(ctx, r.RDB,
		[]string{resetKey(PendingSuffix, email), resetKey(ConfirmedSuffix, email)}, px).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodeConfirmedFailed, err)
	}
	if ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

func (r *ResetCodeRepository) DeletePending(ctx context.Context, email string) error {
	return r.RDB.Del(ctx, resetKey(PendingSuffix, email)).Err()
}

// Consume 校验 confirmed 验证码，匹配时删除
func (r *ResetCodeRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	res, err := consumeScript.Run(ctx, r.RDB, []string{resetKey(ConfirmedSuffix, email)}, code).Int()
	if err != nil {
		return false, err
	}
	switch res {
	case -1:
		return false, ErrCodeNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}
