package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestJWTer() *JWTer {
	return &JWTer{
		Secret:     []byte("test-secret"),
		Issuer:     "identity-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func TestIssueAndParse_RoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	tok, err := j.IssueAccessToken("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.AccountID() != "acc-1" {
		t.Fatalf("subject mismatch: got %q", claims.AccountID())
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		t.Fatalf("expiry %v not after issued-at %v", claims.ExpiresAt, claims.IssuedAt)
	}
}

func TestIssuePair_DistinctTokens(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	access, refresh, err := j.IssuePair("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens must differ")
	}
	// 同秒内重复签发也不得相同（jti）
	_, refresh2, err := j.IssuePair("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if refresh == refresh2 {
		t.Fatal("two issued refresh tokens must not be identical")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	tok, err := j.IssueAccessToken("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	other := newTestJWTer()
	other.Secret = []byte("other-secret")
	if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_TamperedAndExpired_SameErrorKind(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	tok, err := j.IssueAccessToken("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	// 翻转签名段一个字符
	i := strings.LastIndex(tok, ".") + 1
	b := []byte(tok)
	if b[i] == 'a' {
		b[i] = 'b'
	} else {
		b[i] = 'a'
	}
	_, tamperedErr := j.Parse(string(b))

	expiredJ := newTestJWTer()
	expiredJ.AccessTTL = -time.Minute
	expiredTok, err := expiredJ.IssueAccessToken("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	_, expiredErr := expiredJ.Parse(expiredTok)

	// 篡改与过期必须是同一种错误，不向调用方泄露失败原因
	if !errors.Is(tamperedErr, ErrInvalidToken) {
		t.Fatalf("tampered: expected ErrInvalidToken, got %v", tamperedErr)
	}
	if !errors.Is(expiredErr, ErrInvalidToken) {
		t.Fatalf("expired: expected ErrInvalidToken, got %v", expiredErr)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	if _, err := j.Parse("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := j.Parse(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_WrongIssuer(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	other := newTestJWTer()
	other.Issuer = "someone-else"
	tok, err := other.IssueAccessToken("acc-1", "a@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := j.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
