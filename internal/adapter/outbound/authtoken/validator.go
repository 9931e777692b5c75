package authtoken

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/romitgit/tc-project-service/internal/model"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingUserID = errors.New("token has no user id")
)

// Config holds token validation configuration.
type Config struct {
	Secret string
	Issuer string
}

// Validator validates HS256 bearer tokens and extracts the caller.
//
// Platform tokens namespace their custom claims with the issuer URL
// (e.g. "https://topcoder.com/userId"), so claims are matched by suffix.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a new token validator.
func NewValidator(cfg *Config) *Validator {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Validator{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// ValidateToken parses and verifies token and returns the caller it identifies.
func (v *Validator) ValidateToken(tokenString string) (*model.Caller, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return callerFromClaims(claims)
}

func callerFromClaims(claims jwt.MapClaims) (*model.Caller, error) {
	caller := &model.Caller{}

	userID, err := parseUserID(claim(claims, "userId"))
	if err != nil {
		return nil, err
	}
	caller.UserID = userID

	caller.Handle, _ = claim(claims, "handle").(string)
	caller.Email, _ = claim(claims, "email").(string)

	if roles, ok := claim(claims, "roles").([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				caller.Roles = append(caller.Roles, model.UserRole(s))
			}
		}
	}
	return caller, nil
}

// claim returns the value of name, either as a plain claim or as a namespaced one.
func claim(claims jwt.MapClaims, name string) interface{} {
	if v, ok := claims[name]; ok {
		return v
	}
	for k, v := range claims {
		if strings.HasSuffix(k, "/"+name) {
			return v
		}
	}
	return nil
}

func parseUserID(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id > 0 {
			return int64(id), nil
		}
	case string:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, ErrMissingUserID
}
