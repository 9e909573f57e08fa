package example

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/starius/errshape"
)

// Auth issues and checks HS256 tokens for a fixed set of users.
type Auth struct {
	secret []byte
	users  map[string]string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuth(secret []byte, users map[string]string, ttl time.Duration) *Auth {
	return &Auth{
		secret: secret,
		users:  users,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (a *Auth) Login(user, password string) (string, error) {
	want, has := a.users[user]
	if !has || want != password {
		return "", errBadCredentials()
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// Verify returns the user of a valid token. Any failure is reported as
// AUTH001.
func (a *Auth) Verify(token string) (string, error) {
	if token == "" {
		return "", errInvalidToken(errors.New("no token"))
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", errInvalidToken(err)
	}
	if claims.Subject == "" {
		return "", errInvalidToken(errors.New("no subject"))
	}
	return claims.Subject, nil
}

type tokenKey struct{}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// authTransport passes the bearer token of requests to handlers.
var authTransport = &errshape.JsonTransport{
	RequestDecoder: func(ctx context.Context, r *http.Request, req interface{}) (context.Context, error) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		ctx = context.WithValue(ctx, tokenKey{}, token)
		return errshape.DefaultTransport.DecodeRequest(ctx, r, req)
	},
}
