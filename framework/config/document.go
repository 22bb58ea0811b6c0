package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-capability/framework/capability"
)

// LoadDocument reads the capability configuration document at path.
func LoadDocument(path string) (capability.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading capability document: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return doc, nil
}

// envRef matches braced environment references only. A bare $word or $$ is
// left alone, since bucket names and secrets may contain dollar signs.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ParseDocument decodes a YAML capability document. ${VAR} references are
// expanded from the environment first, so secrets can stay out of the file.
// Unset variables expand to the empty string.
func ParseDocument(data []byte) (capability.Document, error) {
	expanded := envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
	var doc capability.Document
	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = capability.Document{}
	}
	return doc, nil
}
