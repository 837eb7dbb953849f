package station

import (
	"bufio"
	"io"
	"strings"
)

// ScanFrames adapts a line-oriented reader (the OCR sidecar's stdout piped
// into the station) into a frame stream. The channel closes when the
// reader ends.
func ScanFrames(r io.Reader) <-chan string {
	out := make(chan string, 16)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" {
				out <- line
			}
		}
	}()
	return out
}
