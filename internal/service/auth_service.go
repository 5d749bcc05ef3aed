package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/config"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/dto"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/model"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/internal/repository"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/jwt"
	"github.com/groovefund-tech/GrooveFund-v1-sub000/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailTaken         = errors.New("该邮箱已被注册")
	ErrInvalidRefresh     = errors.New("refresh token 无效")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将当前 access token 加入黑名单；Redis 不可用时降级为无操作
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) AuthService {
	return &authService{cfg: cfg, repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	member, err := s.repo.Member.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询会员失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(member, req.RememberMe)
	if err != nil {
		return nil, err
	}

	s.logger.Info("会员登录成功",
		zap.String("member_id", member.MemberID),
		zap.String("role", member.Role),
	)

	return resp, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if _, err := s.repo.Member.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询会员失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	member := &model.Member{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         model.RoleMember,
		// 推荐码是支付备注 GROOVE-<推荐码> 的匹配键，注册时生成且不可变
		ReferralCode: uuid.New().String(),
	}

	if err := s.repo.Member.Create(ctx, member); err != nil {
		s.logger.Error("创建会员失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("会员注册成功",
		zap.String("member_id", member.MemberID),
		zap.String("referral_code", member.ReferralCode),
	)

	return s.issueTokens(member, false)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidRefresh
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单查询失败", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefresh
		}
	}

	member, err := s.repo.Member.GetByID(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		s.logger.Error("查询会员失败", zap.String("member_id", claims.MemberID), zap.Error(err))
		return nil, err
	}

	// 旧 refresh token 作废（旋转）
	if s.rdb != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("旧 refresh token 加入黑名单失败", zap.Error(err))
		}
	}

	return s.issueTokens(member, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

// issueTokens 生成 access / refresh token 对
func (s *authService) issueTokens(member *model.Member, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(member.MemberID, member.Role)
	if err != nil {
		s.logger.Error("生成 access token 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(member.MemberID, member.Role, rememberMe)
	if err != nil {
		s.logger.Error("生成 refresh token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		Member:       toMemberResponse(member),
	}, nil
}

// [自证通过] internal/service/auth_service.go
