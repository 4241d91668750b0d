package domain

// OutcomeKind discriminates what the success modal is confirming.
type OutcomeKind string

const (
	OutcomeBalanceTopup          OutcomeKind = "balance_topup"
	OutcomeSubscriptionActivated OutcomeKind = "subscription_activated"
	OutcomeSubscriptionRenewed   OutcomeKind = "subscription_renewed"
	OutcomeSubscriptionPurchased OutcomeKind = "subscription_purchased"
	OutcomeDevicesPurchased      OutcomeKind = "devices_purchased"
	OutcomeTrafficPurchased      OutcomeKind = "traffic_purchased"
)

// SuccessOutcome is the data behind the full-screen success modal. One
// variant per primary financial/subscription outcome; fields irrelevant to
// the kind stay zero.
type SuccessOutcome struct {
	Kind OutcomeKind `json:"type"`

	AmountKopeks     Kopeks `json:"amountKopeks,omitempty"`
	NewBalanceKopeks Kopeks `json:"newBalanceKopeks,omitempty"`

	ExpiresAt    string `json:"expiresAt,omitempty"`
	NewExpiresAt string `json:"newExpiresAt,omitempty"`
	TariffName   string `json:"tariffName,omitempty"`

	DevicesAdded   int `json:"devicesAdded,omitempty"`
	NewDeviceLimit int `json:"newDeviceLimit,omitempty"`
}
