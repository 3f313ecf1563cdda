package service

import (
	"encoding/base64"
	"encoding/json"
)

// DiscordSession OAuth 回调后传递给前端的用户快照
// 序列化为 base64(JSON) 放入跳转 URL 的 session 查询参数，
// 前端直接 atob 解码，字段与编码方式是对外契约的一部分
type DiscordSession struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
}

// EncodeSession 编码会话快照
func EncodeSession(session DiscordSession) (string, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeSession 解码会话快照
func DecodeSession(encoded string) (DiscordSession, error) {
	var session DiscordSession
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return session, err
	}
	if err := json.Unmarshal(raw, &session); err != nil {
		return session, err
	}
	return session, nil
}
