package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SynonymFile holds site-specific header spellings, keyed by schema name:
//
//	pc:
//	  - header: nom machine
//	    field: asset_name
//	printer:
//	  - header: adresse réseau
//	    field: ip_address
type SynonymFile map[string][]Synonym

// LoadSynonyms reads a synonym file from path.
func LoadSynonyms(path string) (SynonymFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening synonyms: %w", err)
	}
	defer f.Close()
	return ParseSynonyms(f)
}

// ParseSynonyms decodes a synonym file and checks that every entry names a
// known schema and one of its fields.
func ParseSynonyms(r io.Reader) (SynonymFile, error) {
	var file SynonymFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing synonyms: %w", err)
	}

	for name, entries := range file {
		schema, ok := SchemaFor(name)
		if !ok {
			return nil, fmt.Errorf("synonyms: unknown sheet kind %q", name)
		}
		for _, e := range entries {
			if NormalizeHeader(e.Header) == "" {
				return nil, fmt.Errorf("synonyms: empty header for %s.%s", name, e.Field)
			}
			if !schema.HasField(e.Field) {
				return nil, fmt.Errorf("synonyms: %s has no field %q", name, e.Field)
			}
		}
	}
	return file, nil
}

// Apply returns schema extended with the file's entries for it.
func (f SynonymFile) Apply(schema Schema) Schema {
	extra := f[schema.Name]
	if len(extra) == 0 {
		return schema
	}
	return schema.Extend(extra)
}
