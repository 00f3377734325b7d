package jsonval

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded YAML node into a JSON value. Mapping keys must
// be scalars and floats must be finite.
func FromYAML(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null{}, nil
	}

	switch node.Kind {
	case 0:
		return Null{}, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return FromYAML(node.Content[0])
	case yaml.AliasNode:
		return FromYAML(node.Alias)
	case yaml.MappingNode:
		return mappingFromYAML(node)
	case yaml.SequenceNode:
		arr := make(Array, 0, len(node.Content))
		for _, item := range node.Content {
			val, err := FromYAML(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

// mappingFromYAML builds an object from a mapping. Keys pulled in through
// "<<" are a shallow default: the mapping's own keys replace them, and an
// earlier merge source wins over a later one.
func mappingFromYAML(node *yaml.Node) (Value, error) {
	obj := NewObject()
	own := NewObject()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
		}
		if keyNode.ShortTag() == "!!merge" {
			if err := mergeKeysFromYAML(obj, valNode); err != nil {
				return nil, err
			}
			continue
		}
		val, err := FromYAML(valNode)
		if err != nil {
			return nil, err
		}
		own.Set(keyNode.Value, val)
	}

	own.Each(func(k string, v Value) {
		obj.Set(k, v)
	})
	return obj, nil
}

func mergeKeysFromYAML(obj *Object, node *yaml.Node) error {
	merged, err := FromYAML(node)
	if err != nil {
		return err
	}

	var sources []*Object
	switch m := merged.(type) {
	case *Object:
		sources = append(sources, m)
	case Array:
		for _, item := range m {
			src, ok := item.(*Object)
			if !ok {
				return fmt.Errorf("line %d: merge sequence must hold mappings", node.Line)
			}
			sources = append(sources, src)
		}
	default:
		return fmt.Errorf("line %d: merge value must be a mapping", node.Line)
	}

	for _, src := range sources {
		src.Each(func(k string, v Value) {
			if _, ok := obj.Get(k); !ok {
				obj.Set(k, v)
			}
		})
	}
	return nil
}

func scalarFromYAML(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, err
		}
		return Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("line %d: %q has no JSON representation", node.Line, node.Value)
		}
		return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return String(node.Value), nil
	}
}
