package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	ClaimEmployeeID = "employee_id"
	ClaimRole       = "role"
	ClaimBranchID   = "branch_id"
	ClaimType       = "type"

	TypeAccess = "access"
)

type Service interface {
	// GenerateAccessToken signs an access token for actor. ttl overrides the configured
	// lifetime when positive.
	GenerateAccessToken(actor user.Actor, ttl time.Duration) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(actor user.Actor, ttl time.Duration) (token string, expiresAt int64, err error) {
	if actor.EmployeeID == "" || !actor.Role.Valid() {
		return "", 0, user.ErrMissingClaims
	}
	if ttl <= 0 {
		ttl, err = time.ParseDuration(j.accessTokenExpirationTime)
		if err != nil {
			return "", 0, fmt.Errorf("invalid access token lifetime: %w", err)
		}
	}
	expiresAt = j.now().Add(ttl).Unix()

	claims := map[string]interface{}{
		ClaimEmployeeID: actor.EmployeeID,
		ClaimRole:       string(actor.Role),
		ClaimType:       TypeAccess,
		"exp":           expiresAt,
	}
	if actor.BranchID != nil && *actor.BranchID != "" {
		claims[ClaimBranchID] = *actor.BranchID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ActorFromClaims rebuilds the caller from verified access token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	if t, _ := claims[ClaimType].(string); t != TypeAccess {
		return user.Actor{}, user.ErrMissingClaims
	}
	employeeID, _ := claims[ClaimEmployeeID].(string)
	role, _ := claims[ClaimRole].(string)
	if employeeID == "" {
		return user.Actor{}, user.ErrMissingClaims
	}
	actor := user.Actor{EmployeeID: employeeID, Role: user.Role(role)}
	if !actor.Role.Valid() {
		return user.Actor{}, user.ErrInvalidRole
	}
	if b, ok := claims[ClaimBranchID].(string); ok && b != "" {
		actor.BranchID = &b
	}
	return actor, nil
}

// ActorFromContext reads the actor from the token that jwtauth.Verifier stored in ctx.
func ActorFromContext(ctx context.Context) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	return ActorFromClaims(claims)
}
