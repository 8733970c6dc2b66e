package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/domain"
	"go-identity-platform/pkg/utils"
)

// ---------- in-memory fakes ----------

type fakeAccountRepo struct {
	byID map[string]domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[string]domain.Account{}}
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := a
	return &cp, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, a *domain.Account) error {
	r.byID[a.ID] = *a
	return nil
}

func (r *fakeAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	a, err := r.FindByEmail(ctx, email)
	return a != nil, err
}

type fakeProfileRepo struct {
	byID map[string]domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: map[string]domain.Profile{}}
}

func (r *fakeProfileRepo) FindByAuthID(_ context.Context, authID string) (*domain.Profile, error) {
	for _, p := range r.byID {
		if p.AuthID == authID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (r *fakeProfileRepo) Save(_ context.Context, p *domain.Profile) error {
	r.byID[p.ID] = *p
	return nil
}

// ---------- fixture ----------

type fixture struct {
	svc      *AuthService
	accounts *fakeAccountRepo
	profiles *fakeProfileRepo
	jwter    *auth.JWTer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	profiles := newFakeProfileRepo()
	jwter := &auth.JWTer{
		Secret:     []byte("test-secret"),
		Issuer:     "identity-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	profSvc := NewProfileService(profiles, nil, zap.NewNop())
	return &fixture{
		svc:      NewAuthService(accounts, profSvc, jwter, zap.NewNop()),
		accounts: accounts,
		profiles: profiles,
		jwter:    jwter,
	}
}

// ---------- register ----------

func TestRegister_NewAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, pair, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, domain.StatusActive, a.Status)

	stored, _ := f.accounts.FindByID(ctx, a.ID)
	require.NotNil(t, stored)
	require.True(t, utils.IsPasswordHash(stored.PasswordHash), "password must never be stored as plaintext")
	require.True(t, utils.CheckPassword("Passw0rd1", stored.PasswordHash))
	require.Equal(t, pair.RefreshToken, stored.RefreshToken, "stored refresh token must match issued one")

	prof, _ := f.profiles.FindByAuthID(ctx, a.ID)
	require.NotNil(t, prof)
	require.False(t, prof.Deleted)
}

func TestRegister_ConflictOnActiveDuplicate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	_, _, err = f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegister_ResurrectsDeletedAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteSelf(ctx, a.ID))

	a2, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd2")
	require.NoError(t, err)
	require.Equal(t, a.ID, a2.ID, "resurrection keeps the same account row")
	require.Equal(t, domain.StatusActive, a2.Status)

	stored, _ := f.accounts.FindByID(ctx, a.ID)
	require.True(t, utils.CheckPassword("Passw0rd2", stored.PasswordHash), "new password must verify")
	require.False(t, utils.CheckPassword("Passw0rd1", stored.PasswordHash), "old password must not verify")

	prof, _ := f.profiles.FindByAuthID(ctx, a.ID)
	require.NotNil(t, prof)
	require.False(t, prof.Deleted, "profile must be restored")
}

func TestRegister_NoDoubleHashingOnRepeatedSaves(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	// Register 内部至少落库两次（建号 + 存 refresh token），密码必须只被哈希一次
	stored, _ := f.accounts.FindByID(ctx, a.ID)
	require.True(t, utils.CheckPassword("Passw0rd1", stored.PasswordHash))
}

// ---------- login ----------

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	pair, err := f.svc.Login(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := f.jwter.Parse(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, a.ID, claims.AccountID())
	require.Equal(t, "a@x.com", claims.Email)

	stored, _ := f.accounts.FindByID(ctx, a.ID)
	require.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestLogin_UniformAuthFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	// 未知邮箱 / 错密码 / 已删账号 → 同一个错误
	_, err = f.svc.Login(ctx, "nobody@x.com", "Passw0rd1")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = f.svc.Login(ctx, "a@x.com", "wrong-password")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	require.NoError(t, f.svc.DeleteSelf(ctx, a.ID))
	_, err = f.svc.Login(ctx, "a@x.com", "Passw0rd1")
	require.ErrorIs(t, err, ErrAuthenticationFailed, "deleted account must fail login even with the right password")
}

func TestLogin_NonActiveStatusesRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	for _, s := range []domain.Status{domain.StatusInactive, domain.StatusLocked, domain.StatusBanned} {
		stored, _ := f.accounts.FindByID(ctx, a.ID)
		stored.Status = s
		require.NoError(t, f.accounts.Save(ctx, stored))

		_, err := f.svc.Login(ctx, "a@x.com", "Passw0rd1")
		require.ErrorIs(t, err, ErrAuthenticationFailed, "status %s must gate login", s)
	}
}

// ---------- refresh ----------

func TestRefresh_SingleActiveTokenInvariant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	p1, err := f.svc.Login(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)
	p2, err := f.svc.Login(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	// R1 已被 R2 顶掉：签名有效、未过期，但不是最新 → mismatch
	_, err = f.svc.Refresh(ctx, p1.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshMismatch)

	// R2 是最新 → 轮换出 R3
	p3, err := f.svc.Refresh(ctx, p2.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, p2.RefreshToken, p3.RefreshToken)

	// R2 已被 R3 顶掉
	_, err = f.svc.Refresh(ctx, p2.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshMismatch)
}

func TestRefresh_InvalidToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_UnknownSubject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.jwter.IssueRefreshToken("ghost-id", "ghost@x.com")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, tok)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRefresh_DeletedAccountRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, pair, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteSelf(ctx, a.ID))

	// 自删不清 refresh token，但 deleted 状态下刷新必须失败
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

// ---------- delete self ----------

func TestDeleteSelf(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.Register(ctx, "a@x.com", "Passw0rd1")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSelf(ctx, a.ID))

	stored, _ := f.accounts.FindByID(ctx, a.ID)
	require.NotNil(t, stored, "soft deletion must not remove the row")
	require.Equal(t, domain.StatusDeleted, stored.Status)

	prof, _ := f.profiles.FindByAuthID(ctx, a.ID)
	require.NotNil(t, prof)
	require.True(t, prof.Deleted)
}

func TestDeleteSelf_NotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.svc.DeleteSelf(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSelf_ErrorKindsAreDistinct(t *testing.T) {
	t.Parallel()

	// 错误族两两不同，transport 才能稳定映射
	errs := []error{ErrAlreadyExists, ErrAuthenticationFailed, ErrInvalidToken, ErrNotFound, ErrRefreshMismatch}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Fatalf("error kinds overlap: %v vs %v", a, b)
			}
		}
	}
}
