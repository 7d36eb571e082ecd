package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Companies lists the boards to sweep, keyed by provider. The file shape
// matches what the watcher has always consumed:
//
//	{
//	  "greenhouse": ["stripe", "databricks"],
//	  "lever": ["netflix"],
//	  "workday": [["Acme", "https://acme.wd1.myworkdayjobs.com/..."]]
//	}
type Companies struct {
	Greenhouse []string       `json:"greenhouse"`
	Lever      []string       `json:"lever"`
	Workday    []WorkdayEntry `json:"workday"`
}

// WorkdayEntry is one [name, url] pair from the workday list.
type WorkdayEntry struct {
	Name string
	URL  string
}

func (e *WorkdayEntry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("workday entry must be a [name, url] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("workday entry must have exactly 2 elements, got %d", len(pair))
	}
	e.Name = pair[0]
	e.URL = pair[1]
	return nil
}

func (e WorkdayEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{e.Name, e.URL})
}

// Empty reports whether no boards are configured at all.
func (c Companies) Empty() bool {
	return len(c.Greenhouse)+len(c.Lever)+len(c.Workday) == 0
}

// Total returns the number of configured boards across all providers.
func (c Companies) Total() int {
	return len(c.Greenhouse) + len(c.Lever) + len(c.Workday)
}

// LoadCompanies reads the board list from path. A missing file returns an
// empty list and no error, since "nothing configured" is a normal state
// for a fresh checkout. A file that exists but cannot be parsed is an
// error so a typo never silently empties the watch list.
func LoadCompanies(path string) (Companies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Companies{}, nil
		}
		return Companies{}, fmt.Errorf("read companies: %w", err)
	}

	var companies Companies
	if err := json.Unmarshal(data, &companies); err != nil {
		return Companies{}, fmt.Errorf("parse companies: %w", err)
	}
	return companies, nil
}
