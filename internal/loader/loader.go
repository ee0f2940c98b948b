// Package loader turns automaton description documents into nfasim.Automaton values.
//
// A description has the shape
//
//	{ "q0": "A", "F": ["C"], "Delta": [["A", "0", ["A", "B"]], ["B", "1", ["C"]]] }
//
// and may be written as JSON or YAML.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/geange/nfasim"
)

// ErrMalformedDescription is wrapped by every error caused by the document content.
var ErrMalformedDescription = errors.New("malformed automaton description")

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the format from the file extension; anything that is not
// .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Description is the loosely typed document after decoding, before validation.
// Q0 is nil when the document has no start state; "" is a valid label.
type Description struct {
	Q0    *string  `mapstructure:"q0" json:"q0" yaml:"q0"`
	F     []string `mapstructure:"F" json:"F" yaml:"F"`
	Delta [][]any  `mapstructure:"Delta" json:"Delta" yaml:"Delta"`
}

// Load reads and builds the automaton stored at path.
func Load(path string) (*nfasim.Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read automaton %s: %w", path, err)
	}
	a, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Parse decodes data in the given format and builds the automaton.
func Parse(data []byte, format Format) (*nfasim.Automaton, error) {
	doc := make(map[string]any)
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: invalid YAML: %v", ErrMalformedDescription, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedDescription, err)
		}
	}
	return FromDocument(doc)
}

// FromDocument builds an automaton from an already decoded document.
func FromDocument(doc map[string]any) (*nfasim.Automaton, error) {
	d, err := Decode(doc)
	if err != nil {
		return nil, err
	}
	return d.Build()
}

// Decode maps a generic document onto a Description. Key matching is case-insensitive
// and unknown keys are ignored.
func Decode(doc map[string]any) (*Description, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDescription)
	}

	d := &Description{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     d,
		DecodeHook: mapstructure.DecodeHookFuncType(labelHook),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}
	return d, nil
}

// labelHook lets integer state labels through as strings; YAML in particular reads
// an unquoted 1 as a number.
func labelHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() == reflect.String {
		return data, nil
	}
	if s, ok := label(data); ok {
		return s, nil
	}
	return data, nil
}

// Build validates every transition triple and assembles the automaton. States are
// interned as: start state, accept states, then transition endpoints in order.
func (d *Description) Build() (*nfasim.Automaton, error) {
	b := nfasim.NewBuilderV1(len(d.F)+len(d.Delta)+1, len(d.Delta))
	if d.Q0 != nil {
		b.SetStart(*d.Q0)
	}
	for _, f := range d.F {
		b.SetAccept(f, true)
	}

	for i, entry := range d.Delta {
		if len(entry) != 3 {
			return nil, fmt.Errorf("%w: Delta[%d]: want [origin, symbol, destinations], got %d elements",
				ErrMalformedDescription, i, len(entry))
		}
		origin, ok := label(entry[0])
		if !ok {
			return nil, fmt.Errorf("%w: Delta[%d]: origin %v is not a state label", ErrMalformedDescription, i, entry[0])
		}
		symbol, err := symbolOf(entry[1])
		if err != nil {
			return nil, fmt.Errorf("%w: Delta[%d]: %v", ErrMalformedDescription, i, err)
		}
		rawDests, ok := entry[2].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: Delta[%d]: destinations must be a list", ErrMalformedDescription, i)
		}
		dests := make([]string, 0, len(rawDests))
		for j, rd := range rawDests {
			dest, ok := label(rd)
			if !ok {
				return nil, fmt.Errorf("%w: Delta[%d][2][%d]: %v is not a state label", ErrMalformedDescription, i, j, rd)
			}
			dests = append(dests, dest)
		}
		b.AddTransition(origin, symbol, dests...)
	}
	return b.Finish(), nil
}

func label(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return x.String(), true
		}
	case float64:
		// int64(x) is undefined outside [-2^63, 2^63)
		if x == math.Trunc(x) && x >= -(1<<63) && x < 1<<63 {
			return strconv.FormatInt(int64(x), 10), true
		}
	}
	return "", false
}

func symbolOf(v any) (rune, error) {
	s, ok := label(v)
	if !ok {
		return 0, fmt.Errorf("symbol %v is not a character", v)
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("symbol %q must be exactly one character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
