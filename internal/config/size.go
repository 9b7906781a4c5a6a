package config

import (
	"fmt"
	"strconv"
	"strings"
)

// sizeUnits is ordered longest suffix first so "KB" wins over "B".
var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"KIB", 1 << 10},
	{"MIB", 1 << 20},
	{"GIB", 1 << 30},
	{"TIB", 1 << 40},
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"TB", 1 << 40},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
	{"B", 1},
}

// ParseSize parses sizes like "4096", "4KB", "1.5GB" or "512MiB" into a
// positive byte count. Units are binary.
func ParseSize(sizeStr string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(sizeStr))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if val, err := strconv.ParseInt(s, 10, 64); err == nil {
		if val <= 0 {
			return 0, fmt.Errorf("size must be positive: %s", sizeStr)
		}
		return val, nil
	}

	for _, u := range sizeUnits {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
		val, err := strconv.ParseFloat(num, 64)
		if err != nil {
			break
		}
		bytes := int64(val * float64(u.multiplier))
		if bytes <= 0 {
			return 0, fmt.Errorf("size must be positive: %s", sizeStr)
		}
		return bytes, nil
	}
	return 0, fmt.Errorf("invalid size format: %s", sizeStr)
}
