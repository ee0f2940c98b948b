// Package record holds the simulation document handed to consumers of a run.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/geange/nfasim"
)

// TypeSimulation tags every document written by this package.
const TypeSimulation = "simulacion_nfa"

// Record is the serialized outcome of one run. The JSON keys follow the document
// format existing consumers already read.
type Record struct {
	Type        string     `json:"type" yaml:"type"`
	SourceLabel string     `json:"dfa" yaml:"dfa"`
	Input       string     `json:"cadena" yaml:"cadena"`
	Trace       [][]string `json:"resultado" yaml:"resultado"`
	Accepted    bool       `json:"aceptada" yaml:"aceptada"`
}

// New wraps a run result. sourceLabel is caller metadata, usually the name of the
// automaton file.
func New(sourceLabel string, res *nfasim.Result) *Record {
	return &Record{
		Type:        TypeSimulation,
		SourceLabel: sourceLabel,
		Input:       res.Input,
		Trace:       res.Trace,
		Accepted:    res.Accepted,
	}
}

// Encode writes r as JSON indented with four spaces.
func (r *Record) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// WriteFile creates or truncates path and writes r to it.
func WriteFile(path string, r *Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := r.Encode(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes a record previously written with WriteFile.
func ReadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &Record{}
	if err := json.NewDecoder(f).Decode(r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return r, nil
}
