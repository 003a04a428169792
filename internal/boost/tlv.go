package boost

// TLV keys, see https://github.com/satoshisstream/satoshis.stream/blob/main/TLV_registry.md
const (
	TLVPodcasting20 uint64 = 7629169
	TLVWalletKey    uint64 = 696969
	TLVWalletID     uint64 = 112111100
	TLVHiveAccount  uint64 = 818818
	TLVFountainKey  uint64 = 906608
	TLVKeysend      uint64 = 5482373484
)

// walletIdentityTLVs are captured as custom_key/custom_value on a Record --
// whichever of these appears first on an HTLC wins.
var walletIdentityTLVs = map[uint64]bool{
	TLVWalletKey:   true,
	TLVWalletID:    true,
	TLVHiveAccount: true,
	TLVFountainKey: true,
}

// IsWalletIdentityTLV reports whether key is one of the custodial-wallet
// identity TLVs.
func IsWalletIdentityTLV(key uint64) bool {
	return walletIdentityTLVs[key]
}
