package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// KeyPair holds the RSA key material used for access tokens.  The private
// key never leaves the process; the public key may be distributed to other
// services so they can verify access tokens statelessly.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// LoadKeyPair reads and parses the PEM-encoded RSA private key at path and
// derives the public key from it.  It is called exactly once during startup
// and the result is injected into the signer; nothing re-reads the file at
// request time.  Both PKCS#1 and PKCS#8 encodings are accepted since
// openssl emits either depending on how the key was generated.
func LoadKeyPair(path string) (KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyPair{}, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return KeyPair{}, fmt.Errorf("no PEM block in %s", path)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		parsed, err8 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err8 != nil {
			return KeyPair{}, fmt.Errorf("parse private key: %w", err)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return KeyPair{}, errors.New("private key is not RSA")
		}
		key = rsaKey
	}

	return KeyPair{Private: key, Public: &key.PublicKey}, nil
}

// PublicKeyPEM renders the public half as PEM so it can be handed to other
// services for stateless access-token verification.
func (kp KeyPair) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	out := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return string(out), nil
}
