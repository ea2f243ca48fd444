package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"clinic/internal/access"
	"clinic/internal/auth"
	apperrors "clinic/internal/errors"
	"clinic/internal/model"
)

const (
	tokenContextKey  = "user"
	actorContextKey  = "actor"
	claimsContextKey = "claims"
)

// ActorLoader resolves the user a token was issued to.
type ActorLoader interface {
	Actor(ctx context.Context, id uint) (*model.User, error)
}

// JWT verifies the bearer token and stores it in the context as *jwt.Token with *auth.Claims.
func JWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtService.Secret(),
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized("invalid or missing access token")
		},
	})
}

// LoadActor rejects refresh tokens, revoked access tokens and disabled users, then
// stores the acting user in the context.
func LoadActor(users ActorLoader, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return unauthorized("invalid or missing access token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.TokenType != auth.TokenTypeAccess {
				return unauthorized("invalid or missing access token")
			}

			ctx := c.Request().Context()
			if revoked, _ := tokens.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
				return unauthorized("token has been revoked")
			}

			user, err := users.Actor(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					return unauthorized("user not found")
				}
				c.Logger().Errorf("load actor %d: %v", claims.UserID, err)
				return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
					Error: "internal server error",
					Code:  "INTERNAL_ERROR",
				})
			}
			if !user.IsActive {
				return unauthorized("user account is disabled")
			}

			c.Set(actorContextKey, user)
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin allows only admins through. It must run after LoadActor.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !access.Admin(Actor(c)) {
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Error: apperrors.ErrForbidden.Error(),
				Code:  "FORBIDDEN",
			})
		}
		return next(c)
	}
}

// Actor returns the authenticated user, or nil outside the secured group.
func Actor(c echo.Context) *model.User {
	user, _ := c.Get(actorContextKey).(*model.User)
	return user
}

// Claims returns the verified access token claims.
func Claims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsContextKey).(*auth.Claims)
	return claims
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHENTICATED",
	})
}
