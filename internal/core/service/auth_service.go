package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/medrecords/patient-portal/internal/core/domain"
	"github.com/medrecords/patient-portal/internal/core/ports"
	"github.com/medrecords/patient-portal/internal/pkg/password"
)

// DefaultSessionTTL is the lifetime of a session token and its cookie.
const DefaultSessionTTL = time.Hour

// sessionClaims is the JWT payload. Only the email is embedded.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and session verification.
type AuthService struct {
	repo       ports.UserRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	hashParams password.Params
	now        func() time.Time
	log        zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultSessionTTL
	}
	return &AuthService{
		repo:       repo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		hashParams: password.DefaultParams,
		now:        time.Now,
		log:        log,
	}
}

// WithHashParams overrides the argon2 cost. Tests use it to stay fast.
func (s *AuthService) WithHashParams(p password.Params) *AuthService {
	s.hashParams = p
	return s
}

func (s *AuthService) Register(ctx context.Context, email, plain string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || plain == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidEmail(email) {
		return nil, fmt.Errorf("%w: %s is not a valid email", domain.ErrInvalidEmail, email)
	}

	hash, err := password.Hash(plain, s.hashParams)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", created.Email).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, plain string) (string, *domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", nil, err
	}

	ok, err := password.Verify(plain, user.PasswordHash)
	if err != nil {
		// An unreadable stored hash cannot match any password.
		s.log.Warn().Err(err).Str("email", user.Email).Msg("stored password hash is unusable")
		return "", nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	return token, user, nil
}

func (s *AuthService) VerifySession(token string) (*ports.SessionClaims, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", domain.ErrInvalidToken)
	}

	return &ports.SessionClaims{Email: claims.Email}, nil
}

func (s *AuthService) generateToken(email string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}
