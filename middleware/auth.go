package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GoogleIssuer is the issuer of Google Sign-In ID tokens. Google also issues
// tokens whose iss claim omits the scheme.
const GoogleIssuer = "https://accounts.google.com"

// GoogleIssuers lists every iss value accepted on a Google ID token
var GoogleIssuers = []string{GoogleIssuer, "accounts.google.com"}

const (
	contextKeyUserID = "user_id"
	contextKeyEmail  = "user_email"
	contextKeyClaims = "validated_claims"
)

// CustomClaims contains the profile claims of a Google ID token
type CustomClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Validate rejects tokens that carry no email, since the manager allow-list
// is keyed by email
func (c CustomClaims) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("token has no email claim")
	}
	return nil
}

// TokenVerifier validates a raw ID token and returns *validator.ValidatedClaims
type TokenVerifier interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// GoogleVerifier validates Google ID tokens against each accepted issuer
type GoogleVerifier struct {
	verifiers []TokenVerifier
}

// NewGoogleVerifier builds a verifier for Google ID tokens issued to
// clientID. Signing keys are fetched from Google and cached.
func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	issuerURL, err := url.Parse(GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	return newIssuerVerifier(provider.KeyFunc, validator.RS256, GoogleIssuers, clientID)
}

func newIssuerVerifier(keyFunc func(context.Context) (interface{}, error), alg validator.SignatureAlgorithm, issuers []string, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}

	v := &GoogleVerifier{}
	for _, issuer := range issuers {
		jwtValidator, err := validator.New(
			keyFunc,
			alg,
			issuer,
			[]string{clientID},
			validator.WithCustomClaims(
				func() validator.CustomClaims {
					return &CustomClaims{}
				},
			),
			validator.WithAllowedClockSkew(time.Minute),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to set up the validator for %s: %w", issuer, err)
		}
		v.verifiers = append(v.verifiers, jwtValidator)
	}
	return v, nil
}

// ValidateToken accepts the token if any issuer's validator does
func (v *GoogleVerifier) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	var lastErr error
	for _, verifier := range v.verifiers {
		claims, err := verifier.ValidateToken(ctx, token)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no issuer configured")
	}
	return nil, lastErr
}

// DisabledVerifier rejects every token. It stands in when no Google client
// id is configured so manager routes stay closed.
type DisabledVerifier struct{}

// ValidateToken always fails
func (DisabledVerifier) ValidateToken(context.Context, string) (interface{}, error) {
	return nil, errors.New("token verification is not configured")
}

// VerifyCredential validates a raw ID token and returns its profile claims
func VerifyCredential(ctx context.Context, verifier TokenVerifier, credential string) (*validator.ValidatedClaims, *CustomClaims, error) {
	token, err := verifier.ValidateToken(ctx, credential)
	if err != nil {
		return nil, nil, err
	}
	return profileOf(token)
}

func profileOf(token interface{}) (*validator.ValidatedClaims, *CustomClaims, error) {
	validated, ok := token.(*validator.ValidatedClaims)
	if !ok {
		return nil, nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}
	custom, ok := validated.CustomClaims.(*CustomClaims)
	if !ok {
		return nil, nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Token has no profile claims"}
	}
	return validated, custom, nil
}

// EnsureValidToken is a middleware that checks the bearer ID token and
// stores the subject, email and claims in the Gin context
func EnsureValidToken(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Info("Rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate token."}}`)); writeErr != nil {
			logger.Warn("Failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		verifier.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			validated, custom, err := profileOf(r.Context().Value(jwtmiddleware.ContextKey{}))
			if err != nil {
				errorHandler(w, r, err)
				return
			}

			c.Set(contextKeyUserID, validated.RegisteredClaims.Subject)
			c.Set(contextKeyEmail, strings.ToLower(custom.Email))
			c.Set(contextKeyClaims, validated)
			c.Request = r
			passed = true
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID extracts the token subject from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(contextKeyUserID)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetEmail extracts the verified email from the Gin context
func GetEmail(c *gin.Context) (string, error) {
	email, exists := c.Get(contextKeyEmail)
	if !exists {
		return "", &AuthError{Code: "MISSING_EMAIL", Message: "Email not found in context"}
	}

	emailStr, ok := email.(string)
	if !ok || emailStr == "" {
		return "", &AuthError{Code: "INVALID_EMAIL", Message: "Email is not a string"}
	}

	return emailStr, nil
}

// GetClaims extracts the validated token claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(contextKeyClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// ManagerChecker reports whether an email is on the manager allow-list
type ManagerChecker interface {
	IsManager(ctx context.Context, email string) (bool, error)
}

// RequireManager is a middleware that only lets allow-listed managers
// through. It must run after EnsureValidToken.
func RequireManager(managers ManagerChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := GetEmail(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			c.Abort()
			return
		}

		ok, err := managers.IsManager(c.Request.Context(), email)
		if err != nil {
			logger.Error("Manager lookup failed", zap.String("email", email), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PERSISTENCE_FAILURE",
					"message": "Failed to check manager status",
				},
			})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Manager access required",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
