package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Count returns the number of usable entries in the gobuster wordlist at
// path. Blank lines and # comments, as found in the dirbuster lists, are not
// counted.
func Count(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening wordlist %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	return n, nil
}
