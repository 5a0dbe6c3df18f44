package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("test-signing-key")

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testValidator() *TokenValidator {
	return NewStaticTokenValidator(func(*jwt.Token) (interface{}, error) { return testKey, nil })
}

func TestValidateAcceptsSignedToken(t *testing.T) {
	tok := sign(t, jwt.MapClaims{
		"sub":           "user-1",
		"email":         "hana@example.com",
		"exp":           time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{"full_name": "Hana"},
	})
	claims, err := testValidator().Validate(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Email != "hana@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.MetadataString("name", "full_name"); got != "Hana" {
		t.Errorf("metadata = %q", got)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"expired":    sign(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":  sign(t, jwt.MapClaims{"sub": "u"}),
		"no subject": sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		"garbage":    "not.a.token",
		"empty":      "",
	}
	other, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte("other"))
	cases["wrong key"] = other

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := testValidator().Validate(tok); err == nil {
				t.Error("token accepted")
			}
		})
	}
}

func TestClaimsActor(t *testing.T) {
	ec := &EnhancedClaims{UserID: "u1", Role: "admin", DisplayName: "Admin"}
	a := ec.Actor()
	if a.ID != "u1" || !a.Admin || a.DisplayName != "Admin" {
		t.Errorf("actor = %+v", a)
	}
	var nilClaims *EnhancedClaims
	if nilClaims.Actor().ID != "" {
		t.Error("nil claims produced an identity")
	}
	if (&EnhancedClaims{}).GetSafeRole() != "user" {
		t.Error("empty role not defaulted")
	}
	if !strings.Contains(CodedErrorResponse("capacity_reached", "full").Code, "capacity") {
		t.Error("code dropped")
	}
}
