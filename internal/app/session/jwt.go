package session

import (
	"context"
	"fmt"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"time"
	"walletledger/internal/app/logger"
)

// session.Manager interface implementation
var _ Manager = (*JWT)(nil)

type JWT struct {
	issuer        string
	secretKey     []byte
	tokenLifetime time.Duration
}

type Claims struct {
	jwt.StandardClaims
	Admin bool `json:"adm,omitempty"`
}

type JWTOption func(*JWT)

func WithIssuer(issuer string) JWTOption {
	return func(s *JWT) {
		s.issuer = issuer
	}
}

func WithTokenLifetime(d time.Duration) JWTOption {
	return func(s *JWT) {
		s.tokenLifetime = d
	}
}

func (svc *JWT) LoggerComponent() string {
	return "Session.JWT"
}

func NewJWT(secretKey string, opts ...JWTOption) *JWT {
	var (
		defaultTokenLifeTime = time.Hour
	)

	s := &JWT{
		secretKey:     []byte(secretKey),
		tokenLifetime: defaultTokenLifeTime,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create method of session.Creator implementation
func (svc *JWT) Create(ctx context.Context, a Actor) (string, error) {
	l := logger.Get(ctx, svc)
	l.Debug().Str("user_id", a.UserID.String()).Msg("Create")

	now := time.Now()

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   a.UserID.String(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(svc.tokenLifetime).Unix(),
			Issuer:    svc.issuer,
		},
		Admin: a.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	strToken, err := token.SignedString(svc.secretKey)
	if err != nil {
		l.Error().Err(err).Send()

		return "", fmt.Errorf("jwt encode: %w", err)
	}

	return strToken, nil
}

// Read method of session.Reader implementation
func (svc *JWT) Read(ctx context.Context, tokenString string) (*Actor, error) {
	l := logger.Get(ctx, svc)
	l.Debug().Msg("Read request")

	c := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return svc.secretKey, nil
	})

	if err != nil {
		l.Debug().Err(err).Msg("ParseWithClaims failed")

		return nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		l.Debug().Msg("Invalid token")

		return nil, ErrInvalidToken
	}

	if svc.issuer != "" && !c.VerifyIssuer(svc.issuer, true) {
		l.Debug().Str("issuer", c.Issuer).Msg("Unexpected issuer")

		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		l.Debug().Err(err).Msg("Invalid subject")

		return nil, ErrInvalidToken
	}

	return &Actor{UserID: userID, IsAdmin: c.Admin}, nil
}
