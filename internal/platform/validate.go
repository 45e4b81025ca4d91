package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/stage/pkg/core"
)

// RequiredFields returns a validator rejecting data that lacks any of fields
// or holds nil for them.
func RequiredFields(fields ...string) core.ValidateHook {
	return func(ctx context.Context, data core.Data) (core.Data, error) {
		for _, f := range fields {
			if v, ok := data[f]; !ok || v == nil {
				return nil, fmt.Errorf("field %q is required", f)
			}
		}
		return data, nil
	}
}
