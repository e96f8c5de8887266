package classification

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
)

// definitionsFile is the on-disk shape of a keyword extension file:
//
//	categories:
//	  PhoneNumber:
//	    strong: [hotline]
//	    exclude: [fax]
type definitionsFile struct {
	Categories map[string]Keywords `yaml:"categories"`
}

// LoadDefinitions reads extra header keywords from a YAML file and merges them
// into base. Categories can be named by display name or identifier; the set
// of categories itself cannot be extended.
func LoadDefinitions(path string, base []Definition) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}
	return ParseDefinitions(data, base)
}

// ParseDefinitions merges YAML keyword extensions into a copy of base.
func ParseDefinitions(data []byte, base []Definition) ([]Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}

	out := make([]Definition, len(base))
	index := make(map[model.Category]int, len(base))
	for i, def := range base {
		out[i] = def
		out[i].Keywords = Keywords{
			Strong:  append([]string(nil), def.Keywords.Strong...),
			Weak:    append([]string(nil), def.Keywords.Weak...),
			Exclude: append([]string(nil), def.Keywords.Exclude...),
		}
		index[def.Category] = i
	}

	for name, extra := range file.Categories {
		category, err := model.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
		}
		i, ok := index[category]
		if !ok {
			return nil, fmt.Errorf("%w: category %q has no definition", common.ErrInvalidConfig, category)
		}
		out[i].Keywords.Strong = append(out[i].Keywords.Strong, extra.Strong...)
		out[i].Keywords.Weak = append(out[i].Keywords.Weak, extra.Weak...)
		out[i].Keywords.Exclude = append(out[i].Keywords.Exclude, extra.Exclude...)
	}

	return out, nil
}
