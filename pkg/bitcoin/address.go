// Package bitcoin renders a recovered private key in the forms a wallet
// expects: compressed-key WIF and the legacy P2PKH address.
package bitcoin

import (
	"crypto/sha256"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/ripemd160"
)

const (
	mainnetPubKeyHashID = 0x00
	mainnetWIFID        = 0x80
)

// KeyPairFromScalar builds a secp256k1 key pair from a raw private key
// scalar. The scalar must lie in [1, n).
func KeyPairFromScalar(k *big.Int) (*btcec.PrivateKey, *btcec.PublicKey, error) {
	if k.Sign() <= 0 || k.BitLen() > 256 {
		return nil, nil, errors.Newf("private key scalar out of range")
	}
	var kb [32]byte
	k.FillBytes(kb[:])
	priv, pub := btcec.PrivKeyFromBytes(kb[:])
	if priv.Key.IsZero() {
		return nil, nil, errors.Newf("private key scalar reduces to zero")
	}
	return priv, pub, nil
}

// PrivateKeyToWIF converts a private key to Wallet Import Format with the
// compressed-pubkey flag set (mainnet keys starting with K or L).
func PrivateKeyToWIF(priv *btcec.PrivateKey) string {
	// WIF payload = privkey ‖ 0x01 compressed flag; base58check adds the
	// 0x80 mainnet version and the checksum.
	payload := make([]byte, 33)
	copy(payload, priv.Serialize())
	payload[32] = 0x01
	return base58.CheckEncode(payload, mainnetWIFID)
}

// P2PKHAddress derives the legacy mainnet address of the compressed public
// key: Base58Check(0x00 ‖ RIPEMD160(SHA256(pubkey))).
func P2PKHAddress(pub *btcec.PublicKey) string {
	return base58.CheckEncode(hash160(pub.SerializeCompressed()), mainnetPubKeyHashID)
}

// hash160 computes RIPEMD160(SHA256(data)).
func hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}
