package service

import (
	"context"

	"go.uber.org/zap"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/domain"
	"go-identity-platform/pkg/utils"
)

// TokenPair access + refresh，一次签发
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// 未知邮箱也跑一次 bcrypt 比较，拉平耗时
var dummyHash = utils.HashPassword("timing-equalizer")

type AuthService struct {
	accounts domain.AccountRepository
	profiles *ProfileService
	jwter    *auth.JWTer
	log      *zap.Logger
}

func NewAuthService(accounts domain.AccountRepository, profiles *ProfileService, jwter *auth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{accounts: accounts, profiles: profiles, jwter: jwter, log: log}
}

// Register 新建或复活账号并签发 token 对。
// 同邮箱存在且未删除 → ErrAlreadyExists；已删除 → 复活（换密码、清 refresh）。
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Account, *TokenPair, error) {
	s.log.Info("register attempt", zap.String("email", email))

	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case a == nil:
		a = &domain.Account{
			ID:           utils.NewID(),
			Email:        email,
			PasswordHash: password,
			Status:       domain.StatusActive,
			Role:         "user",
		}
	case a.IsDeleted():
		s.log.Info("resurrecting deleted account", zap.String("id", a.ID))
		a.Resurrect(password)
	default:
		s.log.Warn("register conflict", zap.String("email", email))
		return nil, nil, ErrAlreadyExists
	}
	if err := s.persistAccount(ctx, a); err != nil {
		return nil, nil, err
	}

	if _, err := s.profiles.CreateOrRestore(ctx, a.ID); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueAndStore(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("account registered", zap.String("id", a.ID), zap.String("email", a.Email))
	return a, pair, nil
}

// Login 校验凭据并轮换 token 对。
// 对外只有 ErrAuthenticationFailed 一种失败；具体原因只进日志，防账号枚举。
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		utils.CheckPassword(password, dummyHash)
		s.log.Warn("login failed: unknown email", zap.String("email", email))
		return nil, ErrAuthenticationFailed
	}
	if !a.CanLogin() {
		utils.CheckPassword(password, dummyHash)
		s.log.Warn("login failed: account not active",
			zap.String("id", a.ID), zap.String("status", string(a.Status)))
		return nil, ErrAuthenticationFailed
	}
	if !utils.CheckPassword(password, a.PasswordHash) {
		s.log.Warn("login failed: bad password", zap.String("id", a.ID))
		return nil, ErrAuthenticationFailed
	}

	pair, err := s.issueAndStore(ctx, a)
	if err != nil {
		return nil, err
	}
	s.log.Info("login ok", zap.String("id", a.ID))
	return pair, nil
}

// Refresh 用旧 refresh token 换新 token 对。
// 与库中存的值严格比对：任何不一致（包括签名有效但已被轮换掉的旧 token）都是
// ErrRefreshMismatch —— 全局至多一个有效 refresh token。
// 并发竞争下该不变量依赖存储的行级写语义，read-then-save 为尽力而为。
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwter.Parse(refreshToken)
	if err != nil {
		return nil, err // ErrInvalidToken
	}
	a, err := s.accounts.FindByID(ctx, claims.AccountID())
	if err != nil {
		return nil, err
	}
	if a == nil {
		s.log.Warn("refresh failed: account gone", zap.String("id", claims.AccountID()))
		return nil, ErrNotFound
	}
	if !a.CanLogin() {
		s.log.Warn("refresh failed: account not active",
			zap.String("id", a.ID), zap.String("status", string(a.Status)))
		return nil, ErrAuthenticationFailed
	}
	if a.RefreshToken != refreshToken {
		s.log.Warn("refresh failed: token mismatch", zap.String("id", a.ID))
		return nil, ErrRefreshMismatch
	}

	pair, err := s.issueAndStore(ctx, a)
	if err != nil {
		return nil, err
	}
	s.log.Info("refresh ok", zap.String("id", a.ID))
	return pair, nil
}

// DeleteSelf 软删：状态流转为 deleted，不删行，refresh token 留存不清
func (s *AuthService) DeleteSelf(ctx context.Context, accountID string) error {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if a == nil {
		s.log.Warn("delete failed: account not found", zap.String("id", accountID))
		return ErrNotFound
	}
	if err := s.profiles.SoftDelete(ctx, a.ID); err != nil {
		return err
	}
	a.MarkDeleted()
	if err := s.persistAccount(ctx, a); err != nil {
		return err
	}
	s.log.Info("account marked deleted", zap.String("id", a.ID), zap.String("email", a.Email))
	return nil
}

// issueAndStore 签发 + 落库视作一步：refresh 没存成功就不把 pair 交给调用方
func (s *AuthService) issueAndStore(ctx context.Context, a *domain.Account) (*TokenPair, error) {
	access, refresh, err := s.jwter.IssuePair(a.ID, a.Email)
	if err != nil {
		return nil, err
	}
	a.RefreshToken = refresh
	if err := s.persistAccount(ctx, a); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// persistAccount 账号的唯一落库口：先保证密码字段已哈希（幂等），再存
func (s *AuthService) persistAccount(ctx context.Context, a *domain.Account) error {
	a.PasswordHash = utils.EnsurePasswordHash(a.PasswordHash)
	return s.accounts.Save(ctx, a)
}
