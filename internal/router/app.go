package router

import (
	"fmt"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/handler"
	"yatube/internal/pkg"
	redisrepo "yatube/internal/repository/redis"
	"yatube/internal/service"
	"yatube/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps 外部依赖；为空的可选项按配置创建默认实现
type Deps struct {
	DB     *gorm.DB
	RDB    *redis.Client
	Config *config.Config

	PageStore cache.Store
	Mailer    pkg.Mailer
	Images    pkg.ImageStore
}

type App struct {
	Engine    *gin.Engine
	PageCache *cache.PageCache
}

// NewApp 组装 service、handler 和路由
func NewApp(d Deps) (*App, error) {
	if d.DB == nil || d.RDB == nil || d.Config == nil {
		return nil, fmt.Errorf("router: db, redis and config are required")
	}
	cfg := d.Config

	if d.PageStore == nil {
		d.PageStore = &redisrepo.PageStore{RDB: d.RDB}
	}
	if d.Mailer == nil {
		d.Mailer = pkg.NewSMTPMailer(pkg.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	if d.Images == nil {
		d.Images = &pkg.DiskImageStore{Root: cfg.Media.Root}
	}

	renderer, err := view.New()
	if err != nil {
		return nil, err
	}
	pages := handler.NewPages(renderer)
	pageCache := cache.NewPageCache(d.PageStore, cfg.Cache.IndexTTL)
	guard := service.NewGuard()

	tokens := &redisrepo.TokenRepository{RDB: d.RDB}
	issuer := pkg.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	emailSvc := service.NewEmailService(d.Mailer, &redisrepo.ResetCodeRepository{RDB: d.RDB})
	userSvc := service.NewUserService(d.DB, tokens, issuer, emailSvc)

	postSvc := service.NewPostService(d.DB, d.Images)
	feedSvc := service.NewFeedService(d.DB)
	followSvc := service.NewFollowService(d.DB)

	engine := InitRouter(Handlers{
		Auth:     userSvc,
		Guard:    guard,
		Pages:    pages,
		Post:     handler.NewPostHandler(postSvc, feedSvc, followSvc, pageCache, guard, pages),
		Comment:  handler.NewCommentHandler(service.NewCommentService(d.DB), pages),
		Follow:   handler.NewFollowHandler(followSvc, feedSvc, pages),
		User:     handler.NewUserHandler(userSvc, pages),
		Email:    handler.NewEmailHandler(userSvc, pages),
		About:    handler.NewAboutHandler(pages),
		MediaDir: cfg.Media.Root,
	})
	return &App{Engine: engine, PageCache: pageCache}, nil
}
