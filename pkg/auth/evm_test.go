package auth

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func signPersonal(t *testing.T, message string, keyHex string) (string, string) {
	t.Helper()
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		t.Fatalf("failed to parse key: %v", err)
	}
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := crypto.Keccak256Hash([]byte(prefixed))
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	return "0x" + hex.EncodeToString(sig), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestVerifyEIP191Signature(t *testing.T) {
	const keyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	message := `{"asset_id":7,"destination_chain":"ethereum"}`

	signature, expectedAddr := signPersonal(t, message, keyHex)

	addr, err := VerifyEIP191Signature(message, signature)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if addr.Hex() != expectedAddr {
		t.Errorf("expected recovered address %s, got %s", expectedAddr, addr.Hex())
	}
}

func TestVerifyEIP191Signature_V27(t *testing.T) {
	const keyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	message := "bridge request 42"

	signature, expectedAddr := signPersonal(t, message, keyHex)

	// Wallets commonly emit v as 27/28 rather than 0/1.
	raw, _ := hex.DecodeString(signature[2:])
	raw[64] += 27
	signature = "0x" + hex.EncodeToString(raw)

	addr, err := VerifyEIP191Signature(message, signature)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if addr.Hex() != expectedAddr {
		t.Errorf("expected recovered address %s, got %s", expectedAddr, addr.Hex())
	}
}

func TestVerifyEIP191Signature_TamperedMessage(t *testing.T) {
	const keyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	signature, signerAddr := signPersonal(t, "original message", keyHex)

	addr, err := VerifyEIP191Signature("tampered message", signature)
	if err != nil {
		t.Fatalf("recovery failed: %v", err)
	}
	if addr.Hex() == signerAddr {
		t.Error("tampered message must not recover the signer's address")
	}
}

func TestVerifyEIP191Signature_Invalid(t *testing.T) {
	if _, err := VerifyEIP191Signature("msg", "not-hex"); err == nil {
		t.Error("expected error for non-hex signature")
	}
	if _, err := VerifyEIP191Signature("msg", "0xdeadbeef"); err == nil {
		t.Error("expected error for short signature")
	}
}

func TestValidateEVMAddress(t *testing.T) {
	cases := []struct {
		address string
		valid   bool
	}{
		{"0x1a4c72e3f9b86d0a5e7c218f4db09a63551e8742", true},
		{"0x1A4C72E3F9B86D0A5E7C218F4DB09A63551E8742", true},
		{"1a4c72e3f9b86d0a5e7c218f4db09a63551e8742", false},
		{"0x1a4c", false},
		{"0xzz4c72e3f9b86d0a5e7c218f4db09a63551e8742", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidateEVMAddress(tc.address); got != tc.valid {
			t.Errorf("ValidateEVMAddress(%q) = %v, want %v", tc.address, got, tc.valid)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress("0x1A4C72E3F9B86D0A5E7C218F4DB09A63551E8742")
	want := "0x1a4c72e3f9b86d0a5e7c218f4db09a63551e8742"
	if got != want {
		t.Errorf("NormalizeAddress = %s, want %s", got, want)
	}
}
