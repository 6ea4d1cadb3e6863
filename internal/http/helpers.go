package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// parseIndex reads a zero-based catalog index and checks it against n.
func parseIndex(raw string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("index must be an integer")
	}
	if i < 0 || i >= n {
		return 0, errIndexOutOfRange
	}
	return i, nil
}

// wantsRefresh reports whether the caller asked to bypass the cache.
func wantsRefresh(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 {
			return -1
		}
		return r
	}, s)
}
