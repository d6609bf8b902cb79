package planner

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

// Fallback asks Primary first and Secondary when Primary fails.
type Fallback struct {
	Primary   contractx.Planner
	Secondary contractx.Planner
}

var _ contractx.Planner = (*Fallback)(nil)

func (f *Fallback) Plan(ctx context.Context, request string) (contractx.Plan, error) {
	if f.Primary == nil && f.Secondary == nil {
		return nil, errors.New("no planner configured")
	}
	if f.Primary != nil {
		plan, err := f.Primary.Plan(ctx, request)
		if err == nil {
			return plan, nil
		}
		if f.Secondary == nil {
			return nil, err
		}
		log.Warn().Err(err).Msg("primary planner failed, using secondary")
	}
	return f.Secondary.Plan(ctx, request)
}
