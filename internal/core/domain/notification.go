package domain

import "time"

// TicketNotification is one entry of the notification-list endpoint.
type TicketNotification struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticketId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the authenticated operator as reported by the backend. The
// router's "refresh user" effect re-fetches it after balance and account
// events.
type Profile struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	IsAdmin       bool   `json:"isAdmin"`
	BalanceKopeks Kopeks `json:"balanceKopeks"`
	IsBanned      bool   `json:"isBanned"`
}
