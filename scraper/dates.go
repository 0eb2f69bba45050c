package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The site renders the "posted" stamp differently depending on recency:
// relative forms for fresh ads ("3 часа назад", "5 дней назад"), a short
// absolute form without a year for older ones ("2 мая 14:30") and a long
// absolute form as the final fallback ("2 мая 2021"). The year in both
// absolute forms is replaced with the current year because the site
// never states it for the short form.
var (
	secondsAgoRe = regexp.MustCompile(`секунд[ыу]? назад`)
	minutesAgoRe = regexp.MustCompile(`минут[аыу]? назад`)
	hoursAgoRe   = regexp.MustCompile(`час(ов|а)? назад`)
	daysAgoRe    = regexp.MustCompile(`(день|дней|дня) назад`)
	weeksAgoRe   = regexp.MustCompile(`недел[ьяию] назад`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

// Month tokens are matched by prefix so that both short ("мар") and
// genitive ("марта") renderings resolve. "мар" must come before "ма".
var ruMonths = []struct {
	prefix string
	month  time.Month
}{
	{"янв", time.January},
	{"фев", time.February},
	{"мар", time.March},
	{"апр", time.April},
	{"ма", time.May},
	{"июн", time.June},
	{"июл", time.July},
	{"авг", time.August},
	{"сен", time.September},
	{"окт", time.October},
	{"ноя", time.November},
	{"дек", time.December},
}

// DateResolver turns free-text posted stamps into calendar dates.
// Unparsable input yields nil, never an error.
type DateResolver struct {
	now func() time.Time
}

func NewDateResolver() *DateResolver {
	return &DateResolver{now: time.Now}
}

// Resolve parses a posted stamp. All returned dates are normalized to
// midnight UTC so watermark comparisons are stable.
func (r *DateResolver) Resolve(text string) *time.Time {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return nil
	}

	if hoursAgoRe.MatchString(text) || minutesAgoRe.MatchString(text) || secondsAgoRe.MatchString(text) {
		return r.today()
	}
	if daysAgoRe.MatchString(text) {
		return r.daysAgo(text, 1)
	}
	if weeksAgoRe.MatchString(text) {
		return r.daysAgo(text, 7)
	}
	return r.parseAbsolute(text)
}

func (r *DateResolver) today() *time.Time {
	y, m, d := r.now().Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func (r *DateResolver) daysAgo(text string, unitDays int) *time.Time {
	match := digitsRe.FindString(text)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	t := r.today().AddDate(0, 0, -n*unitDays)
	return &t
}

// parseAbsolute handles "DD MON HH:MM" and "DD MONTH YYYY". The third
// token must be a clock or a four-digit year; either way only the month
// and day are kept and the current year is substituted.
func (r *DateResolver) parseAbsolute(text string) *time.Time {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return nil
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return nil
	}

	month, ok := monthByName(fields[1])
	if !ok {
		return nil
	}

	third := fields[2]
	if !strings.Contains(third, ":") {
		if _, err := strconv.Atoi(third); err != nil || len(third) != 4 {
			return nil
		}
	}

	t := time.Date(r.now().Year(), month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func monthByName(name string) (time.Month, bool) {
	name = strings.TrimSuffix(name, ".")
	for _, m := range ruMonths {
		if strings.HasPrefix(name, m.prefix) {
			return m.month, true
		}
	}
	return 0, false
}
