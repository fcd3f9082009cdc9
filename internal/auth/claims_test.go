package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("panel-north", testSecret, "sigos", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := ParseToken(token, testSecret, "sigos")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Source() != "panel-north" {
		t.Errorf("Source() = %q, want panel-north", claims.Source())
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime = %v, want 1h", got)
	}
}

func TestGenerateToken_Errors(t *testing.T) {
	if _, err := GenerateToken("  ", testSecret, "", 0); !errors.Is(err, ErrMissingSource) {
		t.Errorf("GenerateToken(blank source) error = %v, want ErrMissingSource", err)
	}
	if _, err := GenerateToken("panel", "", "", 0); !errors.Is(err, ErrNoSecret) {
		t.Errorf("GenerateToken(no secret) error = %v, want ErrNoSecret", err)
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	token, err := GenerateToken("panel", testSecret, "", 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret, "")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != DefaultTTL {
		t.Errorf("lifetime = %v, want %v", got, DefaultTTL)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, _ := GenerateToken("panel", testSecret, "sigos", time.Hour) //nolint:errcheck // inputs are valid

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, RequesterClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "panel",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, _ := expired.SignedString([]byte(testSecret)) //nolint:errcheck // static key

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, RequesterClaims{})
	noSubjectToken, _ := noSubject.SignedString([]byte(testSecret)) //nolint:errcheck // static key

	wrongAlg := jwt.NewWithClaims(jwt.SigningMethodHS512, RequesterClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "panel"},
	})
	wrongAlgToken, _ := wrongAlg.SignedString([]byte(testSecret)) //nolint:errcheck // static key

	tests := []struct {
		name   string
		token  string
		secret string
		issuer string
	}{
		{"wrong secret", valid, "another-secret-that-is-long-enough!!", "sigos"},
		{"wrong issuer", valid, testSecret, "other"},
		{"expired", expiredToken, testSecret, ""},
		{"missing subject", noSubjectToken, testSecret, ""},
		{"wrong algorithm", wrongAlgToken, testSecret, ""},
		{"garbage", "not.a.token", testSecret, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret, tt.issuer); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
