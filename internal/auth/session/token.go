package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AlibekovAA/album-catalog/internal/common/clock"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/album-catalog/internal/user/domain"
)

type Claims struct {
	UserID    userdomain.ID
	Username  string
	JTI       string
	ExpiresAt time.Time
}

type TokenIssuer struct {
	secret []byte
	clock  clock.Clock
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &TokenIssuer{
		secret: []byte(secret),
		clock:  clk,
		ttl:    ttl,
	}
}

func (ti *TokenIssuer) Issue(user userdomain.User) (string, time.Time, error) {
	now := ti.clock.Now()
	expiresAt := now.Add(ti.ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(int64(user.ID), 10),
		"usr": user.Username,
		"jti": uuid.NewString(),
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	metrics.SessionsIssued.Inc()
	return tokenString, expiresAt, nil
}

func (ti *TokenIssuer) Parse(tokenString string) (Claims, error) {
	metrics.SessionValidationsTotal.Inc()
	claims, err := ti.parse(tokenString)
	if err != nil {
		metrics.SessionValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrInvalidSession.WithCause(err)
	}
	return claims, nil
}

func (ti *TokenIssuer) parse(tokenString string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.clock.Now),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return ti.secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return Claims{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims type")
	}

	sub, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["usr"].(string)
	jti, _ := mapClaims["jti"].(string)
	if sub == "" || username == "" {
		return Claims{}, errors.New("missing sub or usr claims")
	}

	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid sub claim: %w", err)
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, errors.New("missing exp claim")
	}

	return Claims{
		UserID:    userdomain.ID(id),
		Username:  username,
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}
