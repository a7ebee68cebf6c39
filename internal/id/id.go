// Package id handles voucher identifiers: a series of letters (and
// occasionally digits) followed by a sequential number, presented as a
// single string such as "A129". Numbers are sequential within a series and
// reset between fiscal years, so IDs are only unique within one year.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse splits a voucher ID like "A129" into series and number. The number
// is the trailing digit run; the series is everything before it.
func Parse(id string) (series string, number int, err error) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return "", 0, fmt.Errorf("voucher ID %q has no number", id)
	}
	if i == 0 {
		return "", 0, fmt.Errorf("voucher ID %q has no series", id)
	}
	number, err = strconv.Atoi(id[i:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid number in voucher ID %q: %w", id, err)
	}
	return id[:i], number, nil
}

// Compare orders voucher IDs by series (lexicographic), then by number
// (numeric), so "A9" sorts before "A10". IDs that do not parse fall back
// to plain string comparison, keeping the order total and deterministic.
func Compare(a, b string) int {
	as, an, aerr := Parse(a)
	bs, bn, berr := Parse(b)
	if aerr != nil || berr != nil {
		return strings.Compare(a, b)
	}
	if c := strings.Compare(as, bs); c != 0 {
		return c
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return 0
}
