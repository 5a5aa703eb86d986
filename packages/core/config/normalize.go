package config

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/secprobe/packages/core/env"
	"gopkg.in/yaml.v3"
)

// topLevelKeys are the keys Config decodes at the document root
var topLevelKeys = []string{
	"ApiUrls", "FilePaths", "BearerToken", "Timeout", "Sequences", "Proxy", "ValidateSSL", "NoColor",
}

// canonicalKeys maps a lower-cased key to the spelling Config decodes, so
// that "apiUrls" or "bearertoken" bind like they do in appsettings.json.
var canonicalKeys = func() map[string]string {
	keys := append([]string{
		"Resolve", "SearchKeyword", "Search",
		"DriverFile", "LogOutFileForResolve", "LogOutFileForSearch", "LogOutFileForBulkSearch",
	}, topLevelKeys...)

	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[strings.ToLower(k)] = k
	}
	return m
}()

// normalizer rewrites a parsed document before it is decoded into Config
type normalizer struct {
	lookup   env.LookupFunc
	missing  []string
	seen     map[string]bool
	warnings []string
}

func newNormalizer(lookup env.LookupFunc) *normalizer {
	return &normalizer{lookup: lookup, seen: make(map[string]bool)}
}

// normalize canonicalizes key case, reports unknown top-level keys and
// expands ${VAR} references inside scalar values. Values are expanded after
// parsing, so quotes or colons in a variable cannot change the structure.
func (n *normalizer) normalize(doc *yaml.Node) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	if root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i]
			if _, ok := canonicalKeys[strings.ToLower(key.Value)]; !ok {
				n.warnings = append(n.warnings, fmt.Sprintf("unknown key %q at line %d is ignored", key.Value, key.Line))
			}
		}
	}

	n.walk(doc)
}

func (n *normalizer) walk(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			n.walk(child)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if canonical, ok := canonicalKeys[strings.ToLower(key.Value)]; ok {
				key.Value = canonical
			}
			n.walk(node.Content[i+1])
		}
	case yaml.ScalarNode:
		n.expand(node)
	}
}

func (n *normalizer) expand(node *yaml.Node) {
	expanded, missing := env.Expand(node.Value, n.lookup)
	for _, name := range missing {
		if !n.seen[name] {
			n.seen[name] = true
			n.missing = append(n.missing, name)
		}
	}

	if expanded == node.Value {
		return
	}
	node.Value = expanded
	// a plain scalar is re-resolved, so ${FLAG} can still decode as a bool
	if node.Style == 0 {
		node.Tag = ""
	}
}
