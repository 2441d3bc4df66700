package model

import (
	"time"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
)

// Tariff is the user's service tier. It governs how often the user may run
// an on-demand price check; the recurring schedule is anchored to the
// user's notify time instead.
type Tariff string

const (
	TariffStandard Tariff = "standard"
	TariffPremium  Tariff = "premium"
	TariffUltimate Tariff = "ultimate"
)

var tariffCheckIntervals = map[Tariff]time.Duration{
	TariffStandard: 6 * time.Hour,
	TariffPremium:  3 * time.Hour,
	TariffUltimate: 1 * time.Hour,
}

// CheckInterval returns the minimum gap between on-demand checks for the
// tier. Unknown tariffs fall back to the standard interval.
func (t Tariff) CheckInterval() time.Duration {
	if d, ok := tariffCheckIntervals[t]; ok {
		return d
	}
	return tariffCheckIntervals[TariffStandard]
}

func (t Tariff) Valid() bool {
	_, ok := tariffCheckIntervals[t]
	return ok
}

// User is a Telegram user tracked by the bot. NotifyTime is nil until the
// user configures it during the intake or settings flow.
type User struct {
	ID         int64 // Telegram chat id
	Name       string
	Tariff     Tariff
	NotifyTime *TimeOfDay
}

func NewUser(id int64, name string, tariff Tariff) (*User, error) {
	if id <= 0 || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !tariff.Valid() {
		tariff = TariffStandard
	}
	return &User{ID: id, Name: name, Tariff: tariff}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == 0 }
