package provider

import (
	"github.com/khxzi/passport/internal/authz"
	"github.com/khxzi/passport/internal/cache"
	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/discord"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/models"
	"github.com/khxzi/passport/internal/queue"
	"github.com/khxzi/passport/internal/repository"
	"github.com/khxzi/passport/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	RequestRepo    repository.VerificationRequestRepository
	VerifyCodeRepo repository.VerifyCodeRepository

	// Discord
	Bot   *discord.Bot
	OAuth *discord.OAuthClient

	// Services
	AuthzService   *authz.Service
	AuthService    *service.AuthService
	CaptchaService *service.CaptchaService
	UploadService  *service.UploadService
	VerifyService  *service.VerifyService
	RequestService *service.RequestService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Discord 机器人与 OAuth 客户端
	c.initDiscord()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.RequestRepo = repository.NewVerificationRequestRepository(db)
	c.VerifyCodeRepo = repository.NewVerifyCodeRepository(db)
}

func (c *Container) initDiscord() {
	bot, err := discord.NewBot(c.Config)
	if err != nil {
		logger.Errorw("provider_init_discord_bot_failed", "error", err)
		panic(err)
	}
	c.Bot = bot
	c.OAuth = discord.NewOAuthClient(&c.Config.Discord.OAuth)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	// 队列未启用时通知静默丢弃，面板与私信由同步路径兜底记录
	var notifier service.VerifyNotifier = c.QueueClient
	if c.QueueClient == nil {
		notifier = &queue.Client{}
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UploadService = service.NewUploadService(c.Config)
	c.VerifyService = service.NewVerifyService(c.Config, c.VerifyCodeRepo, c.RequestRepo, c.Bot, notifier)
	c.RequestService = service.NewRequestService(c.Config, c.RequestRepo, c.Bot, notifier)
	c.Bot.SetRequestService(c.RequestService)
}
