package records

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of seed files and exported snapshots:
//
//	records:
//	  - name: Claudia
//	    age: 42
//
// JSON snapshots parse too since YAML is a superset of JSON.
type seedFile struct {
	Records []Record `yaml:"records"`
}

// LoadSeed parses records from a YAML or JSON document. It does not
// validate them; admission does.
func LoadSeed(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if seed.Records == nil {
		return []Record{}, nil
	}
	return seed.Records, nil
}

// LoadSeedFile opens path and parses it with LoadSeed.
func LoadSeedFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}
