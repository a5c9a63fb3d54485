package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	eip191Prefix = "\x19Ethereum Signed Message:\n"
)

// ErrSignatureRejected is returned when the wallet owner declines to sign.
var ErrSignatureRejected = errors.New("signature request rejected")

// MessageSigner is the connected wallet's personal_sign capability.
type MessageSigner interface {
	Address() common.Address
	SignMessage(ctx context.Context, data []byte) ([]byte, error)
}

func FromPrivateKeyHex(privateKeyHex string, chainID *big.Int) (*bind.TransactOpts, error) {
	privateKey, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	return bind.NewKeyedTransactorWithChainID(privateKey, chainID)
}

func ParsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is empty")
	}
	return crypto.HexToECDSA(privateKeyHex)
}

// Generate EIP191 signature
func SignMessage(key *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	hash := HashMessage(data)
	sig, e := crypto.Sign(hash.Bytes(), key)
	if e != nil {
		return nil, e
	}
	// https://stackoverflow.com/questions/69762108/implementing-ethereum-personal-sign-eip-191-from-go-ethereum-gives-different-s
	sig[64] += 27

	return sig, nil
}

// HashMessage is keccak256("\x19Ethereum Signed Message:\n" + len(data) + data).
func HashMessage(data []byte) common.Hash {
	prefix := []byte(eip191Prefix + fmt.Sprint(len(data)))
	return crypto.Keccak256Hash(append(prefix, data...))
}

// RecoverAddress returns the signer of an EIP191 signature produced by SignMessage.
func RecoverAddress(data, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(signature))
	}
	sig := make([]byte, len(signature))
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(HashMessage(data).Bytes(), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// KeySigner signs with a local ECDSA key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

func (s *KeySigner) Address() common.Address {
	return s.address
}

func (s *KeySigner) SignMessage(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SignMessage(s.key, data)
}

// PrivateKey exposes the key so the standard path can build TransactOpts from
// the same identity.
func (s *KeySigner) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}

// ConfirmFunc asks the owner to approve signing data. Returning false rejects.
type ConfirmFunc func(ctx context.Context, signer common.Address, data []byte) (bool, error)

// PromptSigner asks for confirmation before every signature.
type PromptSigner struct {
	inner   MessageSigner
	confirm ConfirmFunc
}

func NewPromptSigner(inner MessageSigner, confirm ConfirmFunc) *PromptSigner {
	return &PromptSigner{inner: inner, confirm: confirm}
}

func (s *PromptSigner) Address() common.Address {
	return s.inner.Address()
}

func (s *PromptSigner) SignMessage(ctx context.Context, data []byte) ([]byte, error) {
	ok, err := s.confirm(ctx, s.inner.Address(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureRejected, err)
	}
	if !ok {
		return nil, ErrSignatureRejected
	}
	return s.inner.SignMessage(ctx, data)
}
