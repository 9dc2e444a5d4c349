package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperr "ems/internal/errors"
)

// Messages returned by the gate.
const (
	MsgNoToken      = "No authentication token provided"
	MsgTokenExpired = "Authentication token has expired"
	MsgInvalidToken = "Invalid authentication token"
)

const claimsContextKey = "claims"

// Middleware admits requests carrying a valid bearer access token and stores
// its claims in the request context. It never touches persistence.
func Middleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  claimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				return nil, tokenError(err)
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return appErr
			}
			// Anything that did not come out of ParseTokenFunc means no
			// usable token was found in the request.
			noToken := apperr.Authentication(MsgNoToken)
			noToken.Err = err
			return noToken
		},
	})
}

func tokenError(err error) *apperr.Error {
	msg := MsgInvalidToken
	if errors.Is(err, jwt.ErrTokenExpired) {
		msg = MsgTokenExpired
	}
	e := apperr.Authentication(msg)
	e.Err = err
	return e
}

// ClaimsFromContext returns the claims stored by Middleware, if any.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
