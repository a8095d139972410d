package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads rules line by line and appends them to the chain:
//
//	+ pattern   include
//	- pattern   exclude
//	pattern     exclude
//	# comment   ignored (as are blank lines)
func (c *Chain) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		include := false
		switch {
		case strings.HasPrefix(line, "+ "):
			include = true
			line = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "- "):
			line = strings.TrimSpace(line[2:])
		}

		if err := c.add(line, include); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}

// LoadFile parses the rules file at path into the chain.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	if err := c.Parse(f); err != nil {
		return fmt.Errorf("filter file %s: %w", path, err)
	}
	return nil
}
