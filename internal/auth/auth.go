package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is a closed enumeration with a strict hierarchy: every rank subsumes
// the capabilities of the ranks below it.
type Role string

const (
	RoleInvalid Role = ""
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Rank() int {
	switch r {
	case RoleMember:
		return 1
	case RoleManager:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// ParseRole maps a boundary string onto the closed enum. Unknown strings
// yield RoleInvalid, which has rank 0 and fails every AtLeast check.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleMember, RoleManager, RoleAdmin:
		return Role(s)
	default:
		return RoleInvalid
	}
}

// Actor is the resolved caller identity every guarded operation receives.
type Actor struct {
	ID          int64  `json:"id"`
	OrgID       int64  `json:"org_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

func (a *Actor) IsManager() bool {
	return a.Role.AtLeast(RoleManager)
}

func (a *Actor) IsAdmin() bool {
	return a.Role.AtLeast(RoleAdmin)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetActor(actorID int64) (*Actor, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetPasswordForEmail(email string) (passwordHash string, actorID int64, err error)
	GetActorByID(actorID int64) (*Actor, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(actorID int64, email string) (string, error)
	GenerateRefreshToken(actorID int64, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	ActorID int64  `json:"actor_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

type ctxKey string

const ContextActorKey ctxKey = "actor"

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(ContextActorKey).(*Actor)
	return actor, ok
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
