package main

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
)

// Address is a native-chain account address. The user friendly form is
// IBAN-style: the "NQ" country code, two ISO 7064 check digits and 32 base32
// characters, printed in groups of four.
type Address [20]byte

const (
	addressCCode      = "NQ"
	addressBase32Len  = 32
	addressNibbleBits = 5

	// Base32 alphabet of the native chain. I, O, W and Z are excluded to
	// avoid ambiguous characters.
	addressAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVXY"
)

// ParseAddress parses and checksum-validates a user friendly address string.
// Spaces are ignored; the check digits must satisfy ISO 7064 mod 97-10.
func ParseAddress(s string) (Address, error) {
	var addr Address
	compact := strings.ReplaceAll(strings.ToUpper(s), " ", "")
	if len(compact) != len(addressCCode)+2+addressBase32Len {
		return addr, ValidationErrorf("address", "must be %d characters", len(addressCCode)+2+addressBase32Len)
	}
	if !strings.HasPrefix(compact, addressCCode) {
		return addr, ValidationErrorf("address", "must start with %s", addressCCode)
	}
	if ibanCheck(compact[4:]+compact[:4]) != 1 {
		return addr, ValidationErrorf("address", "checksum mismatch")
	}

	payload := compact[4:]
	var acc uint
	var accBits uint
	i := 0
	for _, c := range payload {
		v := strings.IndexRune(addressAlphabet, c)
		if v < 0 {
			return addr, ValidationErrorf("address", "invalid character %q", c)
		}
		acc = acc<<addressNibbleBits | uint(v)
		accBits += addressNibbleBits
		for accBits >= 8 {
			accBits -= 8
			addr[i] = byte(acc >> accBits)
			acc &= (1 << accBits) - 1
			i++
		}
	}
	return addr, nil
}

// UserFriendly formats the address in its spaced, checksummed form.
func (a Address) UserFriendly() string {
	var b strings.Builder
	var acc uint
	var accBits uint
	for _, by := range a {
		acc = acc<<8 | uint(by)
		accBits += 8
		for accBits >= addressNibbleBits {
			accBits -= addressNibbleBits
			b.WriteByte(addressAlphabet[acc>>accBits&0x1F])
			acc &= (1 << accBits) - 1
		}
	}
	payload := b.String()

	check := 98 - ibanCheck(payload+addressCCode+"00")
	compact := addressCCode + twoDigits(check) + payload

	var spaced strings.Builder
	for i := 0; i < len(compact); i += 4 {
		if i > 0 {
			spaced.WriteByte(' ')
		}
		spaced.WriteString(compact[i : i+4])
	}
	return spaced.String()
}

// ibanCheck computes the ISO 7064 mod 97-10 remainder of s, with letters
// substituted by their two-digit values (A=10 .. Z=35). The remainder is
// computed incrementally to keep the intermediate number small.
func ibanCheck(s string) int {
	num := 0
	for _, c := range s {
		var part int
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
		case c >= 'A' && c <= 'Z':
			part = int(c-'A') + 10
			num = num*100 + part
		default:
			return -1
		}
		if num >= 1e6 {
			num %= 97
		}
	}
	return num % 97
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10%10), byte('0' + n%10)})
}

// parseOptionalAddress parses s when non-empty and returns nil otherwise.
// The field name is used in the validation failure.
func parseOptionalAddress(field, s string) (*Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return nil, ValidationErrorf(field, "must be a valid user friendly address")
	}
	return &addr, nil
}

// validateBitcoinRecipient checks that s decodes as a Bitcoin address on the
// configured network.
func validateBitcoinRecipient(field, s string, testnet bool) error {
	params := &chaincfg.MainNetParams
	if testnet {
		params = &chaincfg.TestNet3Params
	}
	if _, err := btcutil.DecodeAddress(s, params); err != nil {
		return ValidationErrorf(field, "must be a valid Bitcoin address")
	}
	return nil
}

// validateEtherRecipient checks that s is a well-formed hex Ethereum address.
// Mixed-case inputs must additionally carry a valid EIP-55 checksum.
func validateEtherRecipient(field, s string) error {
	if !common.IsHexAddress(s) {
		return ValidationErrorf(field, "must be a valid Ethereum address")
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed != strings.ToLower(trimmed) && trimmed != strings.ToUpper(trimmed) {
		if common.HexToAddress(s).Hex() != "0x"+trimmed {
			return ValidationErrorf(field, "checksum mismatch")
		}
	}
	return nil
}
