package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/stage/pkg/core"
)

// Plan is a list of staged operations read from YAML:
//
//	ops:
//	  - {collection: users, action: add, key: u1, data: {name: Ann}}
//	  - {collection: users, action: remove, key: u2}
type Plan struct {
	Ops []PlanOp `yaml:"ops"`
}

// PlanOp is one operation of a Plan. Action is add, update or remove.
type PlanOp struct {
	Collection string         `yaml:"collection"`
	Action     string         `yaml:"action"`
	Key        string         `yaml:"key,omitempty"`
	Data       map[string]any `yaml:"data,omitempty"`
}

// ReadPlan decodes a Plan, rejecting unknown fields.
func ReadPlan(r io.Reader) (*Plan, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

// Apply stages every op of p in order against s. It stops at the first
// failing op; ops staged before it remain staged.
func Apply(ctx context.Context, s *core.Session, p *Plan) error {
	for i, op := range p.Ops {
		col, err := s.Repository(op.Collection)
		if err != nil {
			return fmt.Errorf("op #%d: %w", i, err)
		}

		switch op.Action {
		case "add":
			_, err = col.Add(ctx, op.Key, op.Data)
		case "update":
			_, err = col.Update(ctx, op.Key, op.Data)
		case "remove":
			err = col.Remove(ctx, op.Key)
		default:
			err = fmt.Errorf("unknown action %q", op.Action)
		}
		if err != nil {
			return fmt.Errorf("op #%d: %w", i, err)
		}
	}
	return nil
}
