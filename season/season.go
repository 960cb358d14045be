// Package season models the four in-game seasons and the season sets used
// by map layers to show or hide themselves.
package season

import (
	"fmt"
	"strconv"
	"strings"
)

type Season int

const (
	Spring Season = iota
	Summer
	Fall
	Winter
)

var names = [...]string{"spring", "summer", "fall", "winter"}

func (s Season) String() string {
	if s < Spring || s > Winter {
		return fmt.Sprintf("season(%d)", int(s))
	}
	return names[s]
}

// Next returns the season that follows s.
func (s Season) Next() Season {
	return (s + 1) % 4
}

// FromString parses a single season name. "autumn" is accepted for Fall.
func FromString(name string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spring":
		return Spring, nil
	case "summer":
		return Summer, nil
	case "fall", "autumn":
		return Fall, nil
	case "winter":
		return Winter, nil
	}
	return Spring, fmt.Errorf("unknown season %q", name)
}

// Set is a bitmask of seasons: spring=1, summer=2, fall=4, winter=8.
type Set uint8

const All Set = 1<<4 - 1

func (s Set) Has(season Season) bool {
	return s&(1<<uint(season)) != 0
}

func (s Set) With(season Season) Set {
	return s | 1<<uint(season)
}

func (s Set) String() string {
	var parts []string
	for i := Spring; i <= Winter; i++ {
		if s.Has(i) {
			parts = append(parts, i.String())
		}
	}
	return strings.Join(parts, ",")
}

// Parse reads a season set from either a comma separated list of names
// ("spring,summer") or a decimal bitmask ("3").
func Parse(value string) (Set, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty season set")
	}
	if n, err := strconv.ParseUint(value, 10, 8); err == nil {
		if Set(n)&^All != 0 {
			return 0, fmt.Errorf("season mask %d out of range", n)
		}
		return Set(n), nil
	}

	var set Set
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := FromString(part)
		if err != nil {
			return 0, err
		}
		set = set.With(s)
	}
	return set, nil
}
