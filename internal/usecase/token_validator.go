package usecase

import (
	"homestay/internal/pkg/config"
	"homestay/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errs.New("invalid or expired token")
)

// TokenValidator is the authentication boundary: it turns a bearer token into
// an explicit actor id, which is then passed as a parameter through the
// engine. Nothing below the handler layer reads ambient request state.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, string, error)
}

type tokenValidatorImpl struct {
	secret []byte
}

func NewTokenValidator(cfg config.Config) TokenValidator {
	return &tokenValidatorImpl{secret: []byte(cfg.JWT.Secret)}
}

func (v *tokenValidatorImpl) ValidateToken(token string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", errs.Mark(err, ErrInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrInvalidToken)
	}
	actorID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrInvalidToken)
	}

	role, _ := claims["role"].(string)
	return actorID, role, nil
}
