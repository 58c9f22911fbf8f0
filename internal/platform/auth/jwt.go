package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// ScopeAccess is a normal session token; ScopePayment is the short-lived
	// token handed back after a successful payment verification.
	ScopeAccess  = "access"
	ScopePayment = "payment"
)

type Claims struct {
	Sub   int64  `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Scope string `json:"scope"`

	// Set only on payment-scope tokens.
	OrderID   string `json:"order_id,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`

	jwt.RegisteredClaims
}

func NewAccessToken(secret []byte, sub int64, email, role string, ttl time.Duration) (string, error) {
	return sign(secret, Claims{
		Sub:   sub,
		Email: email,
		Role:  role,
		Scope: ScopeAccess,
	}, ttl)
}

// NewPaymentToken proves to the frontend that a specific payment was
// verified for a specific user, without it having to trust query params.
func NewPaymentToken(secret []byte, sub int64, orderID, paymentID string, ttl time.Duration) (string, error) {
	return sign(secret, Claims{
		Sub:       sub,
		Scope:     ScopePayment,
		OrderID:   orderID,
		PaymentID: paymentID,
	}, ttl)
}

func sign(secret []byte, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Audience:  []string{"eleqt-api"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func Parse(secret []byte, tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
