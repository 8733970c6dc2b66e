package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-identity-platform/internal/core/cache"
	"go-identity-platform/internal/domain"
	"go-identity-platform/pkg/utils"
)

const profileCacheTTL = 5 * time.Minute

// ProfileService 资料 CRUD；读路径走 redis 读穿缓存（可选），写路径失效
type ProfileService struct {
	profiles domain.ProfileRepository
	cache    *cache.Cache // 可为 nil（测试/无 redis 环境）
	log      *zap.Logger
}

func NewProfileService(profiles domain.ProfileRepository, c *cache.Cache, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, cache: c, log: log}
}

func profileCacheKey(authID string) string { return "profile:" + authID }

// CreateOrRestore 注册路径调用：无则建，软删则复活，已存在则原样返回
func (s *ProfileService) CreateOrRestore(ctx context.Context, authID string) (*domain.Profile, error) {
	p, err := s.profiles.FindByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &domain.Profile{ID: utils.NewID(), AuthID: authID}
		s.log.Info("creating profile", zap.String("authId", authID))
	} else if p.Deleted {
		s.log.Info("restoring soft-deleted profile", zap.String("authId", authID))
		p.Deleted = false
	} else {
		return p, nil
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, authID)
	return p, nil
}

// GetByAuthID 软删视同不存在
func (s *ProfileService) GetByAuthID(ctx context.Context, authID string) (*domain.Profile, error) {
	load := func(ctx context.Context) (*domain.Profile, error) {
		return s.profiles.FindByAuthID(ctx, authID)
	}
	var p *domain.Profile
	var err error
	if s.cache != nil {
		p, err = cache.GetOrLoadJSON(s.cache, ctx, profileCacheKey(authID), profileCacheTTL, load)
	} else {
		p, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}
	if p == nil || p.Deleted {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Deleted {
		return nil, ErrNotFound
	}
	return p, nil
}

type ProfileUpdate struct {
	Name      string `json:"name" binding:"omitempty,max=64"`
	FirstName string `json:"firstName" binding:"omitempty,max=64"`
	LastName  string `json:"lastName" binding:"omitempty,max=64"`
}

func (s *ProfileService) Update(ctx context.Context, authID string, in ProfileUpdate) (*domain.Profile, error) {
	p, err := s.profiles.FindByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Deleted {
		s.log.Warn("profile update: not found", zap.String("authId", authID))
		return nil, ErrNotFound
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.FirstName != "" {
		p.FirstName = in.FirstName
	}
	if in.LastName != "" {
		p.LastName = in.LastName
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, authID)
	return p, nil
}

// SoftDelete 账号自删时调用；资料缺失不阻断账号删除
func (s *ProfileService) SoftDelete(ctx context.Context, authID string) error {
	p, err := s.profiles.FindByAuthID(ctx, authID)
	if err != nil {
		return err
	}
	if p == nil || p.Deleted {
		s.log.Warn("profile soft-delete: nothing to delete", zap.String("authId", authID))
		return nil
	}
	p.Deleted = true
	if err := s.profiles.Save(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, authID)
	return nil
}

func (s *ProfileService) invalidate(ctx context.Context, authID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, profileCacheKey(authID)); err != nil {
		s.log.Warn("profile cache invalidate failed", zap.String("authId", authID), zap.Error(err))
	}
}
