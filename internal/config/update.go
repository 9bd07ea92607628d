package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// settableKeys are the dotted keys accepted by SetValue.
var settableKeys = map[string]bool{
	"server.base_url":        true,
	"server.request_timeout": true,
	"auth.gated":             true,
	"auth.login_url":         true,
	"auth.poll_interval":     true,
	"auth.login_timeout":     true,
	"refresh.interval":       true,
	"refresh.cache":          true,
	"ui.toast_duration":      true,
	"ui.page_size":           true,
	"ui.color":               true,
	"log.file":               true,
}

// SettableKeys returns the sorted list of keys SetValue accepts.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetValue sets a dotted key (e.g. "server.base_url") in the config file.
// It preserves the existing YAML structure and comments, creating missing
// sections as needed.
func SetValue(configPath, key, value string) error {
	if !settableKeys[key] {
		return fmt.Errorf("unknown config key %q", key)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// An empty file decodes to a zero node; give it a document to hang keys on
	if root.Kind == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, section := range parts[:len(parts)-1] {
		next := findMapValue(node, section)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: section},
				next)
		}
		if next.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section in config", section)
		}
		node = next
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = ""
		existing.Value = value
		existing.Content = nil
	} else {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: leaf},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

func durationFields(cfg *Config) map[string]time.Duration {
	return map[string]time.Duration{
		"server.request_timeout": cfg.Server.RequestTimeout,
		"auth.poll_interval":     cfg.Auth.PollInterval,
		"auth.login_timeout":     cfg.Auth.LoginTimeout,
		"refresh.interval":       cfg.Refresh.Interval,
		"ui.toast_duration":      cfg.UI.ToastDuration,
	}
}

// Marshal renders cfg as YAML for 'kpi init'. Durations are written in
// their string form.
func Marshal(cfg *Config) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	for key, d := range durationFields(cfg) {
		parts := strings.SplitN(key, ".", 2)
		section := findMapValue(&doc, parts[0])
		if section == nil {
			continue
		}
		if v := findMapValue(section, parts[1]); v != nil {
			v.Kind, v.Tag, v.Value = yaml.ScalarNode, "!!str", d.String()
		}
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()
	return []byte(buf.String()), nil
}
