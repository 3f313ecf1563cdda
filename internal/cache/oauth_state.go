package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const oauthStateTTL = 10 * time.Minute

func oauthStateKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}

// NewOAuthState 生成并存储一次性 OAuth state 随机值
// Redis 未启用时仅生成不存储，校验侧同样放行
func NewOAuthState(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)
	if err := SetJSON(ctx, oauthStateKey(state), true, oauthStateTTL); err != nil {
		return "", err
	}
	return state, nil
}

// ConsumeOAuthState 校验并消费 OAuth state，防重放
func ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	if !Enabled() {
		return true, nil
	}
	var stored bool
	hit, err := GetJSON(ctx, oauthStateKey(state), &stored)
	if err != nil {
		return false, err
	}
	if !hit {
		return false, nil
	}
	if err := Del(ctx, oauthStateKey(state)); err != nil {
		return false, err
	}
	return true, nil
}
