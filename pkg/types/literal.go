package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	dateLayouts = []string{"2006-01-02"}
	timeLayouts = []string{"15:04:05", "15:04:05.999999999", "15:04"}

	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}

	timestampTZLayouts = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05-07",
		"2006-01-02 15:04:05.999999999-07",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
	}
)

// ValidateLiteral checks a string literal used where kind k is expected.
func (s *System) ValidateLiteral(k Kind, text string) error {
	def := s.Def(k)
	if def.Validate == nil {
		return nil
	}
	if err := def.Validate(text); err != nil {
		return newError(CodeInvalidLiteral, ErrInvalidLiteral, k, text)
	}
	return nil
}

// NumericLiteralKind returns the smallest kind that holds a numeric
// literal: smallint, integer or bigint for integers, double otherwise.
func NumericLiteralKind(text string) Kind {
	if strings.ContainsAny(text, ".eE") {
		return Double
	}
	n, err := strconv.ParseInt(text, 10, 64)
	switch {
	case err != nil:
		return Double
	case n >= math.MinInt16 && n <= math.MaxInt16:
		return SmallInt
	case n >= math.MinInt32 && n <= math.MaxInt32:
		return Integer
	default:
		return BigInt
	}
}

func validateInteger(bits int) func(string) error {
	return func(text string) error {
		_, err := strconv.ParseInt(strings.TrimSpace(text), 10, bits)
		return err
	}
}

func validateFloat(text string) error {
	_, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	return err
}

func validateBoolean(text string) error {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "t", "true", "y", "yes", "on", "1", "f", "false", "n", "no", "off", "0":
		return nil
	}
	return fmt.Errorf("not a boolean: %q", text)
}

func validateLayouts(kind string, layouts []string) func(string) error {
	return func(text string) error {
		for _, layout := range layouts {
			if _, err := time.Parse(layout, text); err == nil {
				return nil
			}
		}
		return fmt.Errorf("not a %s: %q", kind, text)
	}
}

var intervalUnits = map[string]bool{
	"microsecond": true, "millisecond": true, "second": true, "minute": true,
	"hour": true, "day": true, "week": true, "month": true, "year": true,
	"decade": true, "century": true,
	"us": true, "ms": true, "s": true, "sec": true, "m": true, "min": true,
	"h": true, "hr": true, "d": true, "w": true, "mon": true, "y": true, "yr": true,
}

// validateInterval accepts "<n> <unit>" sequences ("1 day 2 hours"), an ISO
// 8601 duration ("P1DT2H") or a clock value ("01:30:00").
func validateInterval(text string) error {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return errors.New("empty interval")
	}
	if strings.HasPrefix(text, "p") {
		return validateISODuration(text)
	}

	fields := strings.Fields(text)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.Contains(f, ":") {
			if _, err := time.Parse("15:04:05", f); err != nil {
				if _, err := time.Parse("15:04", f); err != nil {
					return fmt.Errorf("bad clock value %q", f)
				}
			}
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimPrefix(f, "-"), 64); err != nil {
			return fmt.Errorf("bad quantity %q", f)
		}
		if i+1 >= len(fields) {
			return fmt.Errorf("missing unit after %q", f)
		}
		i++
		unit := strings.TrimSuffix(fields[i], "s")
		if unit == "" {
			unit = "s"
		}
		if !intervalUnits[unit] && !intervalUnits[fields[i]] {
			return fmt.Errorf("unknown unit %q", fields[i])
		}
	}
	return nil
}

func validateISODuration(text string) error {
	rest := text[1:]
	if rest == "" {
		return errors.New("empty duration")
	}
	inTime := false
	digits := 0
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			digits++
		case r == 't' && !inTime:
			inTime = true
		case strings.ContainsRune("ymwd", r) && !inTime, strings.ContainsRune("hms", r) && inTime:
			if digits == 0 {
				return fmt.Errorf("designator %q without value", r)
			}
			digits = 0
		default:
			return fmt.Errorf("unexpected %q", r)
		}
	}
	if digits != 0 {
		return errors.New("trailing value without designator")
	}
	return nil
}
