package tokenizer

import "github.com/golang-jwt/jwt/v5"

// Claims combines the standard claims with the wallet-auth specific ones.
// Access and refresh tokens share the shape and differ in token_type,
// token ID and expiry.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	Address   string `json:"eth_address"`
	IsAdmin   bool   `json:"is_admin"`
}
