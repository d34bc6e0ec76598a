package common

import (
	"fmt"
	"strconv"

	"github.com/youta-t/flarc"
)

// ParseIds reads positional arguments as ids.
//
// Ids should be positive integers. Otherwise, it returns flarc.ErrUsage.
func ParseIds(name string, values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %s should be a positive integer: %s", flarc.ErrUsage, name, v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
