// Package temporal extracts publication-date predicates from free-form
// Spanish text. Parsing is deterministic and stateless: patterns are tried in
// a fixed priority order, most specific first, so a fully-qualified date is
// never mis-read as a bare year.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the shape of a parsed filter.
type Kind int

const (
	KindDay Kind = iota + 1
	KindMonth
	KindYear
	KindYearRange
)

// Filter is a predicate over document publication dates. Exactly one shape is
// populated, according to Kind: {Year,Month,Day}, {Year,Month}, {Year}, or
// {YearFrom,YearTo} with YearFrom <= YearTo.
type Filter struct {
	Kind     Kind
	Year     int
	Month    int
	Day      int
	YearFrom int
	YearTo   int
}

// months maps Spanish month names to month numbers. Both full and 3-letter
// abbreviated forms are accepted, including the common spelling variants
// septiembre/setiembre and sep/set.
var months = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4,
	"mayo": 5, "junio": 6, "julio": 7, "agosto": 8,
	"septiembre": 9, "setiembre": 9, "octubre": 10,
	"noviembre": 11, "diciembre": 12,

	"ene": 1, "feb": 2, "mar": 3, "abr": 4, "may": 5, "jun": 6,
	"jul": 7, "ago": 8, "sep": 9, "set": 9, "oct": 10, "nov": 11, "dic": 12,
}

var (
	reDayMonthYear = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-zñ]+)\s+del?\s+(\d{4})`)
	reSlashDate    = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	reDashDotDate  = regexp.MustCompile(`(\d{1,2})[\-.](\d{1,2})[\-.](\d{4})`)
	reMonthYear    = regexp.MustCompile(`([a-zñ]+)\s+del?\s+(\d{4})`)
	reNumMonthYear = regexp.MustCompile(`\b(\d{1,2})[\-/](\d{4})\b`)
	reYearRange    = regexp.MustCompile(`(20\d{2})\s*(?:-|a|al|hasta)\s*(20\d{2})`)
	reBareYear     = regexp.MustCompile(`\b(20\d{2})\b`)
)

// Parse extracts at most one date predicate from text. Matching is
// case-insensitive; nil means the text carries no recognizable date and
// retrieval should proceed unfiltered.
//
// Priority order (first match wins):
//  1. "D de MES del AAAA"  -> day
//  2. D/M/AAAA             -> day
//  3. D-M-AAAA or D.M.AAAA -> day
//  4. "MES del AAAA"       -> month
//  5. M/AAAA or M-AAAA     -> month (only when 1 <= M <= 12)
//  6. "AAAA-AAAA" / "AAAA a AAAA" / "AAAA hasta AAAA" -> year range
//  7. bare AAAA in 2000-2099 -> year
func Parse(text string) *Filter {
	q := strings.ToLower(text)

	if m := reDayMonthYear.FindStringSubmatch(q); m != nil {
		if month, ok := months[m[2]]; ok {
			return &Filter{
				Kind:  KindDay,
				Day:   atoi(m[1]),
				Month: month,
				Year:  atoi(m[3]),
			}
		}
	}

	if m := reSlashDate.FindStringSubmatch(q); m != nil {
		return &Filter{Kind: KindDay, Day: atoi(m[1]), Month: atoi(m[2]), Year: atoi(m[3])}
	}

	if m := reDashDotDate.FindStringSubmatch(q); m != nil {
		return &Filter{Kind: KindDay, Day: atoi(m[1]), Month: atoi(m[2]), Year: atoi(m[3])}
	}

	if m := reMonthYear.FindStringSubmatch(q); m != nil {
		if month, ok := months[m[1]]; ok {
			return &Filter{Kind: KindMonth, Month: month, Year: atoi(m[2])}
		}
	}

	if m := reNumMonthYear.FindStringSubmatch(q); m != nil {
		if month := atoi(m[1]); month >= 1 && month <= 12 {
			return &Filter{Kind: KindMonth, Month: month, Year: atoi(m[2])}
		}
	}

	// The range check runs before the bare-year check: "2021-2023" must
	// become a range, not the year 2021.
	if m := reYearRange.FindStringSubmatch(q); m != nil {
		a, b := atoi(m[1]), atoi(m[2])
		if a > b {
			a, b = b, a
		}
		return &Filter{Kind: KindYearRange, YearFrom: a, YearTo: b}
	}

	if m := reBareYear.FindStringSubmatch(q); m != nil {
		return &Filter{Kind: KindYear, Year: atoi(m[1])}
	}

	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
