package openssl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseOptionsYAML decodes a YAML mapping into Options, keeping key order.
// Booleans become flags, sequences become repeated values and any other
// scalar becomes a scalar value. Empty input yields empty Options.
func ParseOptionsYAML(data []byte) (*Options, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	if doc.Kind == 0 {
		return NewOptions(), nil
	}
	opts, err := OptionsFromYAML(&doc)
	if err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	return opts, nil
}

// OptionsFromYAML converts a mapping node (or a document wrapping one).
func OptionsFromYAML(node *yaml.Node) (*Options, error) {
	node = resolveAlias(node)
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return NewOptions(), nil
		}
		node = resolveAlias(node.Content[0])
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: options must be a mapping", node.Line)
	}

	opts := NewOptions()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], resolveAlias(node.Content[i+1])
		v, err := yamlValue(val)
		if err != nil {
			return nil, fmt.Errorf("line %d: option %q: %w", key.Line, key.Value, err)
		}
		opts.Set(key.Value, v)
	}
	return opts, nil
}

func yamlValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return Value{}, err
			}
			return Flag(b), nil
		case "!!null":
			return Value{}, errors.New("null value")
		}
		return Scalar(n.Value), nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
				return Value{}, fmt.Errorf("line %d: sequence items must be scalars", item.Line)
			}
			items = append(items, item.Value)
		}
		return Repeated(items...), nil
	}
	return Value{}, errors.New("mappings are not valid option values")
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// ParseOptionsJSON decodes a JSON object into Options, keeping key order.
// true/false become flags, arrays become repeated values, and strings and
// numbers become scalars. Numbers keep their literal text.
func ParseOptionsJSON(data []byte) (*Options, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return NewOptions(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("parse options: expected a JSON object")
	}

	opts := NewOptions()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse options: %w", err)
		}
		name := tok.(string) // object keys are always strings

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse options: option %q: %w", name, err)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, fmt.Errorf("parse options: option %q: %w", name, err)
		}
		opts.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse options: unexpected data after the JSON object")
	}
	return opts, nil
}

func jsonValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case bool:
		return Flag(x), nil
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := jsonScalar(item)
			if !ok {
				return Value{}, errors.New("array items must be strings, numbers or booleans")
			}
			items = append(items, s)
		}
		return Repeated(items...), nil
	}
	if s, ok := jsonScalar(raw); ok {
		return Scalar(s), nil
	}
	if raw == nil {
		return Value{}, errors.New("null value")
	}
	return Value{}, errors.New("objects are not valid option values")
}

func jsonScalar(raw any) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		if x {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

// ParseOptionWords parses command-line option words:
//
//	name=value    scalar
//	name          flag set to true
//	~name         flag set to false
//	name[]=value  item appended to a repeated option
func ParseOptionWords(words []string) (*Options, error) {
	opts := NewOptions()
	for _, w := range words {
		if name, ok := strings.CutPrefix(w, "~"); ok {
			if name == "" || strings.Contains(name, "=") {
				return nil, fmt.Errorf("invalid option %q: ~ takes a bare name", w)
			}
			opts.Set(name, Flag(false))
			continue
		}

		name, value, hasValue := strings.Cut(w, "=")
		if !hasValue {
			if name == "" {
				return nil, errors.New("empty option name")
			}
			opts.Set(name, Flag(true))
			continue
		}
		if base, ok := strings.CutSuffix(name, "[]"); ok {
			if base == "" {
				return nil, fmt.Errorf("invalid option %q: empty name", w)
			}
			opts.Append(base, value)
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("invalid option %q: empty name", w)
		}
		opts.Set(name, Scalar(value))
	}
	return opts, nil
}
