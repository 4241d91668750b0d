package domain

import (
	"encoding/json"
	"strings"
)

// Push event types pushed by the subscription backend.
const (
	EventBalanceTopup  = "balance.topup"
	EventBalanceChange = "balance.change"

	EventSubscriptionActivated        = "subscription.activated"
	EventSubscriptionRenewed          = "subscription.renewed"
	EventSubscriptionExpiring         = "subscription.expiring"
	EventSubscriptionExpired          = "subscription.expired"
	EventSubscriptionDailyDebit       = "subscription.daily_debit"
	EventSubscriptionTrafficReset     = "subscription.traffic_reset"
	EventSubscriptionDevicesPurchased = "subscription.devices_purchased"

	EventAutopaySuccess           = "autopay.success"
	EventAutopayFailed            = "autopay.failed"
	EventAutopayInsufficientFunds = "autopay.insufficient_funds"

	EventAccountBanned   = "account.banned"
	EventAccountUnbanned = "account.unbanned"
	EventAccountWarning  = "account.warning"

	EventReferralBonus      = "referral.bonus"
	EventReferralRegistered = "referral.registered"

	EventPaymentReceived = "payment.received"

	EventTicketNew        = "ticket.new"
	EventTicketAdminReply = "ticket.admin_reply"
	EventTicketUserReply  = "ticket.user_reply"
)

// TicketEventPrefix marks the event family owned exclusively by the
// ticket bell consumer.
const TicketEventPrefix = "ticket."

// Message is one decoded server-pushed event. The Type field discriminates
// which of the optional fields are meaningful; unknown types keep the raw
// frame so future server events survive the decode boundary intact.
type Message struct {
	Type string `json:"type"`

	AmountKopeks     *int64   `json:"amount_kopeks,omitempty"`
	AmountRubles     *float64 `json:"amount_rubles,omitempty"`
	NewBalanceKopeks *int64   `json:"new_balance_kopeks,omitempty"`
	RequiredKopeks   *int64   `json:"required_kopeks,omitempty"`
	RequiredRubles   *float64 `json:"required_rubles,omitempty"`
	BalanceKopeks    *int64   `json:"balance_kopeks,omitempty"`
	BalanceRubles    *float64 `json:"balance_rubles,omitempty"`
	BonusKopeks      *int64   `json:"bonus_kopeks,omitempty"`
	BonusRubles      *float64 `json:"bonus_rubles,omitempty"`

	ExpiresAt    string `json:"expires_at,omitempty"`
	NewExpiresAt string `json:"new_expires_at,omitempty"`
	TariffName   string `json:"tariff_name,omitempty"`
	DaysLeft     *int   `json:"days_left,omitempty"`

	DevicesAdded   *int `json:"devices_added,omitempty"`
	NewDeviceLimit *int `json:"new_device_limit,omitempty"`

	Reason       string `json:"reason,omitempty"`
	Description  string `json:"description,omitempty"`
	Text         string `json:"message,omitempty"`
	Title        string `json:"title,omitempty"`
	ReferralName string `json:"referral_name,omitempty"`

	TicketID *int64 `json:"ticket_id,omitempty"`

	// Raw is the original frame as received from the transport.
	Raw json.RawMessage `json:"-"`
}

// IsTicket reports whether the message belongs to the ticket event family.
func (m Message) IsTicket() bool {
	return strings.HasPrefix(m.Type, TicketEventPrefix)
}

// Amount resolves the event amount, preferring kopeks over rubles.
func (m Message) Amount() Kopeks {
	return resolveKopeks(m.AmountKopeks, m.AmountRubles)
}

// Bonus resolves the referral bonus amount.
func (m Message) Bonus() Kopeks {
	return resolveKopeks(m.BonusKopeks, m.BonusRubles)
}

// Required resolves the amount an auto-payment needed.
func (m Message) Required() Kopeks {
	return resolveKopeks(m.RequiredKopeks, m.RequiredRubles)
}

// Balance resolves the balance reported alongside an auto-payment failure.
func (m Message) Balance() Kopeks {
	return resolveKopeks(m.BalanceKopeks, m.BalanceRubles)
}

func resolveKopeks(kopeks *int64, rubles *float64) Kopeks {
	if kopeks != nil {
		return Kopeks(*kopeks)
	}
	if rubles != nil {
		return FromRubles(*rubles)
	}
	return 0
}
