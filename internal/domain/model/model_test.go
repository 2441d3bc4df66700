package model

import (
	"errors"
	"testing"
	"time"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	valid := map[string]TimeOfDay{
		"00:00":   {0, 0},
		"18:30":   {18, 30},
		"23:59":   {23, 59},
		" 09:05 ": {9, 5},
	}
	for in, want := range valid {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", in, got, want)
		}
	}

	invalid := []string{"25:99", "24:00", "12:60", "9:30", "09:5", "0930", "half past nine", "", "09:30:00", "-1:30"}
	for _, in := range invalid {
		if _, err := ParseTimeOfDay(in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("ParseTimeOfDay(%q) should be rejected, got err=%v", in, err)
		}
	}
}

func TestTimeOfDayNext(t *testing.T) {
	t.Parallel()

	tod := TimeOfDay{Hour: 18, Minute: 30}

	before := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := tod.Next(before); !got.Equal(time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)) {
		t.Fatalf("before the anchor: got %v", got)
	}

	after := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	if got := tod.Next(after); !got.Equal(time.Date(2026, 3, 11, 18, 30, 0, 0, time.UTC)) {
		t.Fatalf("after the anchor: got %v", got)
	}

	// Exactly on the anchor is not strictly in the future.
	exact := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	if got := tod.Next(exact); !got.Equal(time.Date(2026, 3, 11, 18, 30, 0, 0, time.UTC)) {
		t.Fatalf("exactly on the anchor: got %v", got)
	}
}

func TestTimeOfDayOn(t *testing.T) {
	t.Parallel()

	tod := TimeOfDay{Hour: 7, Minute: 45}
	day := time.Date(2026, 12, 24, 23, 59, 58, 123, time.UTC)
	got := tod.On(day)
	want := time.Date(2026, 12, 24, 7, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("On should keep the date and replace the clock, got %v", got)
	}
}

func TestTariffCheckInterval(t *testing.T) {
	t.Parallel()

	cases := map[Tariff]time.Duration{
		TariffStandard:   6 * time.Hour,
		TariffPremium:    3 * time.Hour,
		TariffUltimate:   time.Hour,
		Tariff("legacy"): 6 * time.Hour, // unknown falls back to standard
	}
	for tariff, want := range cases {
		if got := tariff.CheckInterval(); got != want {
			t.Errorf("%s: CheckInterval = %v, want %v", tariff, got, want)
		}
	}
	if Tariff("legacy").Valid() {
		t.Fatalf("unknown tariff must not be valid")
	}
}

func TestNewUserDefaultsTariff(t *testing.T) {
	t.Parallel()

	u, err := NewUser(42, "bob", Tariff("nonsense"))
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Tariff != TariffStandard {
		t.Fatalf("invalid tariff should fall back to standard, got %s", u.Tariff)
	}

	if _, err := NewUser(0, "bob", TariffStandard); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("zero id must be rejected, got %v", err)
	}
	if _, err := NewUser(42, "", TariffStandard); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty name must be rejected, got %v", err)
	}
}

func TestNewSubscriptionValidation(t *testing.T) {
	t.Parallel()

	art := Article{Name: "LP X", URL: "https://vinylbox.ru/item/1", Shop: ShopVinylBox}
	if _, err := NewSubscription("", 42, art, time.Now()); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty id must be rejected, got %v", err)
	}
	if _, err := NewSubscription("id", 0, art, time.Now()); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("missing user must be rejected, got %v", err)
	}
	if _, err := NewSubscription("id", 42, Article{}, time.Now()); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("article without url must be rejected, got %v", err)
	}
	if _, err := NewSubscription("id", 42, art, time.Now()); err != nil {
		t.Fatalf("valid subscription rejected: %v", err)
	}
}
