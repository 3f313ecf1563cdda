package constants

// 验证请求状态常量
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// 验证方式常量
const (
	VerifyMethodCode   = "Code Verification"
	VerifyMethodManual = "Manual Review"
)

// 验证失败原因常量
const (
	VerifyFailReasonBadRequest   = "bad_request"
	VerifyFailReasonCooldown     = "cooldown"
	VerifyFailReasonNoCode       = "no_code"
	VerifyFailReasonCodeExpired  = "code_expired"
	VerifyFailReasonCodeMismatch = "code_mismatch"
	VerifyFailReasonDelivery     = "delivery_failed"
	VerifyFailReasonInternal     = "internal_error"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 人机验证提供方常量
const (
	CaptchaProviderNone      = "none"
	CaptchaProviderImage     = "image"
	CaptchaProviderTurnstile = "turnstile"
)

// 人机验证场景常量
const (
	CaptchaSceneVerifySend    = "verify_send"
	CaptchaSceneVerifyRequest = "verify_request"
	CaptchaSceneAdminLogin    = "admin_login"
)

// 队列常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskVerifyOutcomeDM   = "verify:outcome_dm"
	TaskVerifyReviewPanel = "verify:review_panel"
	TaskVerifyAuditLog    = "verify:audit_log"
)

// 审核结论常量
const (
	ReviewOutcomeApproved = "approved"
	ReviewOutcomeRejected = "rejected"
	ReviewOutcomeRevoked  = "revoked"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pp"
)
