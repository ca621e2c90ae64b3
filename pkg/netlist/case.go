package netlist

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-eeac/pkg/dto"
)

var (
	ErrCase  = errors.New("netlist: invalid case")
	ErrEvent = errors.New("netlist: invalid event sequence")
)

// Case is a network topology with the load flow results it was solved with.
type Case struct {
	Name     string              `yaml:"name,omitempty"`
	Topology dto.NetworkTopology `yaml:"topology"`
	LoadFlow dto.LoadFlowResults `yaml:"load_flow"`
	Events   []dto.EventSequence `yaml:"events,omitempty"`
}

// ParseCase decodes a YAML (or JSON) case document and validates it.
func ParseCase(r io.Reader) (*Case, error) {
	var c Case
	if err := decode(r, &c); err != nil {
		return nil, err
	}
	if err := validateTopology(&c.Topology); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCase, err)
	}
	for i := range c.Events {
		if err := validateEvents(&c.Events[i]); err != nil {
			return nil, fmt.Errorf("%w: sequence %d: %w", ErrEvent, i, err)
		}
	}
	return &c, nil
}

func LoadCase(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := ParseCase(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseEvents decodes one event sequence.
func ParseEvents(r io.Reader) (*dto.EventSequence, error) {
	var seq dto.EventSequence
	if err := decode(r, &seq); err != nil {
		return nil, err
	}
	if err := validateEvents(&seq); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvent, err)
	}
	return &seq, nil
}

func LoadEvents(path string) (*dto.EventSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seq, err := ParseEvents(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if seq.Name == "" {
		seq.Name = path
	}
	return seq, nil
}

func decode(r io.Reader, out interface{}) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty document")
		}
		return err
	}
	return nil
}
