package anime_test

import (
	"fmt"
	"strings"
)

func sprintf(format string, n int) string {
	if !strings.Contains(format, "%d") {
		return format
	}
	return fmt.Sprintf(format, n)
}
