package series

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Catalog maps section names to series for loading and saving history.
//
// The text format is a sequence of sections. Each section starts with a
// "[name]" line, followed by one "<epoch-ms>\t<0|1>\t<value>" line per
// sample, oldest first.
type Catalog struct {
	names  []string
	series map[string]*Series
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{series: make(map[string]*Series)}
}

// Register adds a named target series. Registering a name twice replaces
// the target but keeps its original position.
func (c *Catalog) Register(name string, s *Series) {
	if s == nil {
		return
	}
	if _, exists := c.series[name]; !exists {
		c.names = append(c.names, name)
	}
	c.series[name] = s
}

// Load appends every sample of a registered section to its series. Unknown
// sections and malformed lines are skipped.
func (c *Catalog) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var target *Series
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			target = c.series[line[1:len(line)-1]]
			continue
		}

		if target == nil {
			continue
		}

		item, ok := parseLine(line)
		if !ok {
			continue
		}
		target.Add(item.Time, item.Valid, item.Value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	return nil
}

// Save writes every registered, non-empty series in registration order
func (c *Catalog) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, name := range c.names {
		s := c.series[name]
		if s.Len() == 0 {
			continue
		}

		if _, err := fmt.Fprintf(bw, "[%s]\n", name); err != nil {
			return fmt.Errorf("failed to write section %s: %w", name, err)
		}
		for _, it := range s.items {
			valid := 0
			if it.Valid {
				valid = 1
			}
			if _, err := fmt.Fprintf(bw, "%d\t%d\t%d\n", it.Time.UnixMilli(), valid, it.Value); err != nil {
				return fmt.Errorf("failed to write section %s: %w", name, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush history: %w", err)
	}
	return nil
}

func parseLine(line string) (Item, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return Item{}, false
	}

	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Item{}, false
	}

	var valid bool
	switch fields[1] {
	case "0":
	case "1":
		valid = true
	default:
		return Item{}, false
	}

	value, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		return Item{}, false
	}

	return Item{Time: time.UnixMilli(ms), Valid: valid, Value: int32(value)}, true
}
