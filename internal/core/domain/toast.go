package domain

import "time"

// ToastType selects the visual style of a toast.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

// Toast is a transient, auto-dismissing notification banner.
type Toast struct {
	ID       string        `json:"id"`
	Type     ToastType     `json:"type"`
	Title    string        `json:"title,omitempty"`
	Message  string        `json:"message"`
	Icon     string        `json:"icon,omitempty"`
	Duration time.Duration `json:"duration"`

	// OnClick navigates to the subject of the toast and dismisses it.
	OnClick func() `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}
