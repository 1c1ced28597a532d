package multiplayer

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwk is one entry of a JWKS document's "keys" array (RSA keys only — the
// only family Auth0-style JWKS endpoints serve for RS256-signed tokens).
type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

// JWKSet is an immutable, startup-fetched set of verification keys keyed by
// kid (spec §5: "JWKS is refreshed at server startup; treated as immutable
// for the lifetime of the process").
type JWKSet struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// FetchJWKS retrieves and parses the JWKS document at uri.
func FetchJWKS(uri string) (*JWKSet, error) {
	resp, err := http.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: read JWKS: %w", err)
	}
	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("multiplayer: parse JWKS: %w", err)
	}
	set := &JWKSet{keys: make(map[string]*rsa.PublicKey)}
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		key, err := k.toRSAPublicKey()
		if err != nil {
			continue
		}
		set.keys[k.Kid] = key
	}
	return set, nil
}

func (k jwk) toRSAPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

// Key returns the public key for kid, or false if this JWKS doesn't carry
// it.
func (s *JWKSet) Key(kid string) (*rsa.PublicKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[kid]
	return k, ok
}

// ErrAuthentication is returned by ValidateToken on any verification
// failure; the caller closes the upgrade with a close frame (spec §4.9,
// §7).
var ErrAuthentication = errors.New("multiplayer: authentication failed")

// Claims is the subset of the JWT payload the room cares about.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ValidateToken verifies tokenString's signature against jwks and its
// standard claims (expiry, not-before), returning the parsed claims.
func ValidateToken(tokenString string, jwks *JWKSet) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != "RS256" {
			return nil, fmt.Errorf("%w: unexpected signing method %s", ErrAuthentication, t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := jwks.Key(kid)
		if !ok {
			return nil, fmt.Errorf("%w: unknown key id %q", ErrAuthentication, kid)
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithLeeway(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return claims, nil
}
