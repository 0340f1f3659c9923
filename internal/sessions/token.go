package sessions

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avorobev/authd/internal/jwt"
)

// TokenCookie is the name of the cookie carrying the signed token.
const TokenCookie = "authd_token"

// TokenBinding is the signed-token strategy: the cookie (or Authorization
// bearer header) carries a self-contained HS256 token. Logout only clears the
// cookie; a leaked token stays valid until expiry. Accepted limitation.
type TokenBinding struct {
	codec *jwt.JWT
	ttl   time.Duration
}

// NewTokenBinding creates a token binding around the given codec. The ttl is
// used for the cookie lifetime and should match the codec's expiration.
func NewTokenBinding(codec *jwt.JWT, ttl time.Duration) *TokenBinding {
	return &TokenBinding{codec: codec, ttl: ttl}
}

func (b *TokenBinding) GetUser(r *http.Request) (*Session, error) {
	ctx := r.Context()

	tokenString, err := b.codec.GetTokenFromRequest(ctx, r)
	if err != nil {
		cookie, cerr := r.Cookie(TokenCookie)
		if cerr != nil || cookie.Value == "" {
			return nil, ErrUnauthenticated
		}
		tokenString = cookie.Value
	}

	claims, err := b.codec.GetClaims(ctx, tokenString)
	if err != nil {
		// A credential was presented but did not verify.
		return nil, ErrMalformedCredential
	}

	return &Session{UserID: claims.UserID, Email: claims.Email}, nil
}

func (b *TokenBinding) SetUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID, email string) error {
	token, err := b.codec.Generate(r.Context(), userID, email)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(b.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout clears the cookie. There is no server-side revocation.
func (b *TokenBinding) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
