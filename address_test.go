package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The all-zero address formats to the well-known burn address string.
const burnAddress = "NQ07 0000 0000 0000 0000 0000 0000 0000 0000"

func TestAddressUserFriendlyZero(t *testing.T) {
	var addr Address
	assert.Equal(t, burnAddress, addr.UserFriendly())
}

func TestParseAddressRoundTrip(t *testing.T) {
	for tag := byte(0); tag < 32; tag++ {
		addr := testNativeAddress(tag)
		parsed, err := ParseAddress(addr.UserFriendly())
		require.NoError(t, err)
		assert.Equal(t, addr, parsed)
	}
}

func TestParseAddressNormalization(t *testing.T) {
	// Case and spacing are cosmetic
	parsed, err := ParseAddress("nq07 00000000 0000 0000 0000 0000 00000000")
	require.NoError(t, err)
	assert.Equal(t, Address{}, parsed)
}

func TestParseAddressRejections(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"too short":         "NQ07 0000",
		"wrong country":     "DE07 0000 0000 0000 0000 0000 0000 0000 0000",
		"bad check digits":  "NQ08 0000 0000 0000 0000 0000 0000 0000 0000",
		"excluded alphabet": "NQ07 0000 0000 0000 0000 0000 0000 0000 000W",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAddress(input)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestParseOptionalAddress(t *testing.T) {
	addr, err := parseOptionalAddress("sender", "")
	require.NoError(t, err)
	assert.Nil(t, addr)

	addr, err = parseOptionalAddress("sender", burnAddress)
	require.NoError(t, err)
	require.NotNil(t, addr)
	assert.Equal(t, Address{}, *addr)

	_, err = parseOptionalAddress("sender", "garbage")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sender", ve.Field)
}

func TestValidateBitcoinRecipient(t *testing.T) {
	// Mainnet P2PKH
	require.NoError(t, validateBitcoinRecipient("recipient", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false))
	// Testnet address rejected on mainnet
	require.Error(t, validateBitcoinRecipient("recipient", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", false))
	// And accepted on testnet
	require.NoError(t, validateBitcoinRecipient("recipient", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", true))

	require.Error(t, validateBitcoinRecipient("recipient", "not-an-address", false))
}

func TestValidateEtherRecipient(t *testing.T) {
	// All-lowercase carries no checksum
	require.NoError(t, validateEtherRecipient("recipient", "0xde709f2102306220921060314715629080e2fb77"))
	// Valid EIP-55 mixed case
	require.NoError(t, validateEtherRecipient("recipient", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	// One flipped character breaks the checksum
	require.Error(t, validateEtherRecipient("recipient", "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	require.Error(t, validateEtherRecipient("recipient", "0x1234"))
}
