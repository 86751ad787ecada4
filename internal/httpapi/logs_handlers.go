package httpapi

import (
	"bufio"
	"errors"
	"net/http"
	"os"
)

const tailLines = 75

type LogsHandler struct {
	Path string
}

func (h LogsHandler) Tail(w http.ResponseWriter, r *http.Request) {
	lines, err := tail(h.Path, tailLines)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "log_unavailable", err.Error())
		return
	}
	writeJSON(w, map[string]any{"lines": lines})
}

// tail returns the last n lines of path. A missing file has no lines.
func tail(path string, n int) ([]string, error) {
	lines := []string{}
	if path == "" {
		return lines, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return lines, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for sc.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return append(lines, ring...), nil
}
