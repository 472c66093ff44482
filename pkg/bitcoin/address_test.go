package bitcoin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownFirstKey(t *testing.T) {
	// The k = 1 wallet forms are pinned all over the ecosystem.
	priv, pub, err := KeyPairFromScalar(big.NewInt(1))
	require.NoError(t, err)

	assert.Equal(t, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn", PrivateKeyToWIF(priv))
	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", P2PKHAddress(pub))
}

func TestKeyPairRoundTrip(t *testing.T) {
	k := big.NewInt(987654321)
	priv, pub, err := KeyPairFromScalar(k)
	require.NoError(t, err)

	assert.Equal(t, k.Bytes(), new(big.Int).SetBytes(priv.Serialize()).Bytes())
	assert.Len(t, pub.SerializeCompressed(), 33)
}

func TestKeyPairRejectsOutOfRange(t *testing.T) {
	_, _, err := KeyPairFromScalar(big.NewInt(0))
	assert.Error(t, err)

	_, _, err = KeyPairFromScalar(big.NewInt(-5))
	assert.Error(t, err)
}
