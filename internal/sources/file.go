package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// FileSource reads credentials from a YAML document of the form:
//
//	db:
//	  host: localhost
//	  port: 5432
//	  name: labdb
//	  user: labuser
//	  password: secret
//
// Every key is required; no defaults are applied.
type FileSource struct {
	path string
}

// NewFileSource returns a FileSource for path.
// An empty path means credcheck.DefaultSecretsFile.
func NewFileSource(path string) *FileSource {
	if path == "" {
		path = credcheck.DefaultSecretsFile
	}
	return &FileSource{path: path}
}

func (s *FileSource) Mode() credcheck.Mode { return credcheck.ModeFile }

// Path returns the file this source reads.
func (s *FileSource) Path() string { return s.path }

// Resolve reads and parses the file on every call.
func (s *FileSource) Resolve(_ context.Context) (credcheck.CredentialRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return credcheck.CredentialRecord{}, fmt.Errorf("%s: %w", s.path, credcheck.ErrFileNotFound)
		}
		return credcheck.CredentialRecord{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc struct {
		DB yaml.Node `yaml:"db"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: %v: %w", s.path, err, credcheck.ErrParse)
	}

	node := &doc.DB
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == 0 || node.ShortTag() == "!!null" {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: missing top-level \"db\" key: %w", s.path, credcheck.ErrSchema)
	}
	if node.Kind != yaml.MappingNode {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: \"db\" must be a mapping, got %s: %w", s.path, node.ShortTag(), credcheck.ErrSchema)
	}

	fields, err := scalarFields(node)
	if err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: db: %v: %w", s.path, err, credcheck.ErrParse)
	}
	return recordFromFields(fields, s.path+": db")
}

// scalarFields flattens a mapping node. Scalars keep their source text, so
// an unquoted password such as 0123 or 1e3 is not reinterpreted as a number.
// Null scalars become nil and nested collections keep their decoded shape.
func scalarFields(mapping *yaml.Node) (map[string]any, error) {
	fields := make(map[string]any, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}

		switch {
		case value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null":
			fields[key.Value] = nil
		case value.Kind == yaml.ScalarNode:
			fields[key.Value] = value.Value
		default:
			var v any
			if err := value.Decode(&v); err != nil {
				return nil, err
			}
			fields[key.Value] = v
		}
	}
	return fields, nil
}
