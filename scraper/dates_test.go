package scraper

import (
	"testing"
	"time"
)

func fixedResolver(year int, month time.Month, day int) *DateResolver {
	r := NewDateResolver()
	r.now = func() time.Time {
		return time.Date(year, month, day, 13, 45, 0, 0, time.UTC)
	}
	return r
}

func TestDateResolver_RelativeForms(t *testing.T) {
	r := fixedResolver(2024, time.January, 15)
	today := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		text string
		want time.Time
	}{
		{"30 секунд назад", today},
		{"5 минут назад", today},
		{"1 минуту назад", today},
		{"3 часа назад", today},
		{"12 часов назад", today},
		{"час назад", today},
		{"1 день назад", today.AddDate(0, 0, -1)},
		{"2 дня назад", today.AddDate(0, 0, -2)},
		{"5 дней назад", today.AddDate(0, 0, -5)},
		{"1 неделю назад", today.AddDate(0, 0, -7)},
		{"2 недели назад", today.AddDate(0, 0, -14)},
	}

	for _, tc := range cases {
		got := r.Resolve(tc.text)
		if got == nil {
			t.Fatalf("%q: expected a date, got nil", tc.text)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

func TestDateResolver_AbsoluteForms(t *testing.T) {
	r := fixedResolver(2024, time.January, 15)

	cases := []struct {
		text string
		want time.Time
	}{
		// Short form carries no year; the current one is substituted.
		{"2 мая 14:30", time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)},
		{"28 февраля 09:05", time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)},
		// The long form's stated year is replaced too.
		{"2 мая 2021", time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)},
		{"14 марта 2022", time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)},
		{"7 дек. 11:00", time.Date(2024, time.December, 7, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got := r.Resolve(tc.text)
		if got == nil {
			t.Fatalf("%q: expected a date, got nil", tc.text)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

func TestDateResolver_Unparsable(t *testing.T) {
	r := fixedResolver(2024, time.January, 15)

	cases := []string{
		"",
		"   ",
		"вчера",
		"размещено недавно",
		"32 мая 2021",
		"2 тюменя 2021",
		"2 мая",
	}

	for _, text := range cases {
		if got := r.Resolve(text); got != nil {
			t.Fatalf("%q: expected nil, got %s", text, got.Format("2006-01-02"))
		}
	}
}

func TestDateResolver_MarchBeforeMayPrefix(t *testing.T) {
	r := fixedResolver(2024, time.June, 1)

	got := r.Resolve("5 марта 2023")
	if got == nil || got.Month() != time.March {
		t.Fatalf("expected March, got %v", got)
	}
	got = r.Resolve("5 мая 2023")
	if got == nil || got.Month() != time.May {
		t.Fatalf("expected May, got %v", got)
	}
}
