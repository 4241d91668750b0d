package domain

import "fmt"

// Kopeks is a money amount in kopeks (1/100 ruble). The backend sends
// either *_kopeks or *_rubles for the same field; everything internal is
// normalized to kopeks.
type Kopeks int64

// FromRubles converts a ruble amount to kopeks, rounding half away from zero.
func FromRubles(rubles float64) Kopeks {
	if rubles < 0 {
		return Kopeks(rubles*100 - 0.5)
	}
	return Kopeks(rubles*100 + 0.5)
}

// Rubles returns the amount in rubles.
func (k Kopeks) Rubles() float64 {
	return float64(k) / 100
}

// String formats the amount as "123.45 ₽".
func (k Kopeks) String() string {
	sign := ""
	v := int64(k)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d ₽", sign, v/100, v%100)
}

// Signed formats the amount with an explicit leading sign, as shown in
// balance-change notifications.
func (k Kopeks) Signed() string {
	if k >= 0 {
		return "+" + k.String()
	}
	return k.String()
}
