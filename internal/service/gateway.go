package service

// DiscordGateway 验证流程依赖的 Discord 出口
// 由 internal/discord 的机器人实现；测试中以桩实现替换
type DiscordGateway interface {
	// SendCodeDM 向用户私信发送一次性验证码
	SendCodeDM(discordID, code string) error
	// GrantVerified 授予已验证身份组并移除未验证身份组
	GrantVerified(discordID string) error
	// RevokeVerified 移除已验证身份组并恢复未验证身份组
	RevokeVerified(discordID string) error
}

// VerifyNotifier 审核结论相关通知的异步出口
// 生产实现基于 asynq 队列投递，失败由队列自行重试
type VerifyNotifier interface {
	EnqueueOutcomeDM(discordID, outcome, note string) error
	EnqueueReviewPanel(requestID string) error
	EnqueueAuditLog(discordID, outcome, reviewerID string) error
}
