package pdfutils

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Digits is a target alphabet for ASCII digits, indexed by digit value.
type Digits [10]rune

var (
	ThaiDigits        = Digits{'๐', '๑', '๒', '๓', '๔', '๕', '๖', '๗', '๘', '๙'}
	ArabicIndicDigits = Digits{'٠', '١', '٢', '٣', '٤', '٥', '٦', '٧', '٨', '٩'}
	NoDigits          = Digits{}
)

var digitAlphabets = map[string]Digits{
	"thai":         ThaiDigits,
	"arabic-indic": ArabicIndicDigits,
	"none":         NoDigits,
	"":             NoDigits,
}

// DigitsByName looks up a configured alphabet.
func DigitsByName(name string) (Digits, bool) {
	d, ok := digitAlphabets[strings.ToLower(name)]
	return d, ok
}

// String replaces every ASCII digit in s. The zero alphabet leaves s as is.
func (d Digits) String(s string) string {
	if d == NoDigits {
		return s
	}

	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return d[r-'0']
		}
		return r
	}, s)
}

var jsonNumber = reflect.TypeOf(json.Number(""))

// Localize rebuilds a decoded tree with every string leaf localised. Maps
// and slices of any element type are copied; numbers, including
// json.Number, and other leaves pass through.
func (d Digits) Localize(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	return d.localizeValue(reflect.ValueOf(v)).Interface()
}

func (d Digits) localizeValue(v reflect.Value) reflect.Value {
	if v.Type() == jsonNumber {
		return v
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(d.localizeValue(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), d.localizeValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(d.localizeValue(v.Index(i)))
		}
		return out
	case reflect.String:
		out := reflect.New(v.Type()).Elem()
		out.SetString(d.String(v.String()))
		return out
	default:
		return v
	}
}

// LocalizeNode localises every string scalar of n in place. Mapping keys
// are left alone, so key sets and their order survive.
func (d Digits) LocalizeNode(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			d.LocalizeNode(c)
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			d.LocalizeNode(n.Content[i])
		}
	case yaml.ScalarNode:
		if n.Tag == "!!str" {
			n.Value = d.String(n.Value)
		}
	}
}

// LocalizeJSON localises a JSON document, keeping its key order, and
// returns it indented.
func (d Digits) LocalizeJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrMalformedRequest, err.Error())
	}

	d.LocalizeNode(&doc)

	var buf bytes.Buffer
	if err := writeJSONNode(&buf, &doc); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, errors.Wrap(err, "indent")
	}

	return out.Bytes(), nil
}

func writeJSONNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case 0:
		buf.WriteString("null")
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSONNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeJSONNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSONNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONNode(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!int", "!!float", "!!bool":
			buf.WriteString(n.Value)
		case "!!null":
			buf.WriteString("null")
		default:
			v, err := json.Marshal(n.Value)
			if err != nil {
				return err
			}
			buf.Write(v)
		}
	default:
		return errors.Errorf("unsupported node kind %d", n.Kind)
	}

	return nil
}
