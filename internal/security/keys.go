package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey is returned when key material cannot be parsed as an RSA key.
var ErrInvalidKey = errors.New("invalid key")

// keyMaterial accepts either inline PEM (possibly with literal \n escapes, as
// env files tend to carry) or a path to a PEM file, and returns the raw block.
func keyMaterial(s string) (*pem.Block, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	var raw []byte
	if strings.HasPrefix(s, "-----BEGIN") {
		raw = []byte(strings.ReplaceAll(s, `\n`, "\n"))
	} else {
		b, err := os.ReadFile(s)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrInvalidKey
	}
	return block, nil
}

// ParsePrivateKey parses an RSA private key from inline PEM or a file path.
// Both PKCS#1 and PKCS#8 encodings are accepted.
func ParsePrivateKey(s string) (*rsa.PrivateKey, error) {
	block, err := keyMaterial(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	default:
		return nil, ErrInvalidKey
	}
}

// ParsePublicKey parses an RSA public key from inline PEM or a file path.
func ParsePublicKey(s string) (*rsa.PublicKey, error) {
	block, err := keyMaterial(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	default:
		return nil, ErrInvalidKey
	}
}
