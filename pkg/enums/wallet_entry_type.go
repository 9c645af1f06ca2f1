package enums

import "fmt"

// WalletEntryType classifies a wallet ledger entry. Every
// balance mutation writes exactly one entry of one of these types, keyed to
// the transaction that caused it.
type WalletEntryType string

const (
	WalletEntryTypeStartingBalance WalletEntryType = "starting_balance"
	WalletEntryTypeRedeemCost      WalletEntryType = "redeem_cost"
	WalletEntryTypeRewardPayout    WalletEntryType = "reward_payout"
	WalletEntryTypeItemSale        WalletEntryType = "item_sale"
	WalletEntryTypeAdminAdjustment WalletEntryType = "admin_adjustment"
)

var validWalletEntryTypes = []WalletEntryType{
	WalletEntryTypeStartingBalance,
	WalletEntryTypeRedeemCost,
	WalletEntryTypeRewardPayout,
	WalletEntryTypeItemSale,
	WalletEntryTypeAdminAdjustment,
}

// String implements fmt.Stringer.
func (t WalletEntryType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical wallet entry enum.
func (t WalletEntryType) IsValid() bool {
	for _, candidate := range validWalletEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletEntryType converts raw input into a WalletEntryType.
func ParseWalletEntryType(value string) (WalletEntryType, error) {
	for _, candidate := range validWalletEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet entry type %q", value)
}
