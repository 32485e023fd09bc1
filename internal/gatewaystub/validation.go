package gatewaystub

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	vpaPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9]+$`)
	digitsPattern = regexp.MustCompile(`^\d{13,19}$`)
	cardSeparator = strings.NewReplacer(" ", "", "-", "")
)

func validVPA(vpa string) bool {
	return vpaPattern.MatchString(vpa)
}

func validCardNumber(number string) bool {
	cleaned := cardSeparator.Replace(number)
	if !digitsPattern.MatchString(cleaned) {
		return false
	}
	return luhn(cleaned)
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func cardNetwork(number string) string {
	cleaned := cardSeparator.Replace(number)
	switch {
	case strings.HasPrefix(cleaned, "4"):
		return "visa"
	case hasAnyPrefix(cleaned, "51", "52", "53", "54", "55"):
		return "mastercard"
	case hasAnyPrefix(cleaned, "34", "37"):
		return "amex"
	case hasAnyPrefix(cleaned, "60", "65", "81", "82", "83", "84", "85", "86", "87", "88", "89"):
		return "rupay"
	}
	return "unknown"
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// cardNotExpired parses an MM/YY or MM/YYYY expiry and reports whether the
// card is still valid in the month of now.
func cardNotExpired(expiry string, now time.Time) bool {
	month, year, ok := strings.Cut(strings.TrimSpace(expiry), "/")
	if !ok {
		return false
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return false
	}
	if y < 100 {
		y += 2000
	}
	if y != now.Year() {
		return y > now.Year()
	}
	return m >= int(now.Month())
}

func last4(number string) string {
	cleaned := cardSeparator.Replace(number)
	if len(cleaned) < 4 {
		return cleaned
	}
	return cleaned[len(cleaned)-4:]
}
