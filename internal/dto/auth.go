package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required,min=8,max=72"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Phone    string `json:"phone"    binding:"omitempty,max=30"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录 / 刷新成功响应
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in"` // access token 有效秒数
	Member       MemberResponse `json:"member"`
}

// [自证通过] internal/dto/auth.go
