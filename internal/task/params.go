package task

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/taskspipeline/internal/model"
)

// Params are the kind specific constructor arguments of a task description.
type Params map[string]any

// Decode decodes the params into out, a struct using yaml tags. Params that
// don't map to a field of out are rejected.
func (p Params) Decode(out any) error {
	data, err := yaml.Marshal(map[string]any(p))
	if err != nil {
		return fmt.Errorf("could not encode params: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid params: %w: %w", err, model.ErrNotValid)
	}

	return nil
}

// Seconds is a duration param. Numbers are seconds, strings can also be Go
// durations (e.g `1m30s`).
type Seconds time.Duration

// UnmarshalYAML satisfies yaml.Unmarshaler.
func (s *Seconds) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: must be seconds or a duration", n.Line)
	}

	v := strings.TrimSpace(n.Value)
	var d time.Duration
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		d = time.Duration(f * float64(time.Second))
	} else {
		pd, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("line %d: must be seconds or a duration, got %q", n.Line, v)
		}
		d = pd
	}

	if d < 0 {
		return fmt.Errorf("line %d: can't be negative", n.Line)
	}

	*s = Seconds(d)
	return nil
}

// Duration returns the param as a duration.
func (s Seconds) Duration() time.Duration { return time.Duration(s) }

// StringList is a list of strings param, a single string is accepted as a one
// element list.
type StringList []string

// UnmarshalYAML satisfies yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = StringList{n.Value}
		return nil
	}

	var ss []string
	if err := n.Decode(&ss); err != nil {
		return err
	}
	*l = ss

	return nil
}

// requireParam returns the missing param error.
func requireParam(key string) error {
	return fmt.Errorf("param %q is required: %w", key, model.ErrNotValid)
}
