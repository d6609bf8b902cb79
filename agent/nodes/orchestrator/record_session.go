package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
	statex "github.com/tanpawarit/demo-agent/agent/state"
)

func RecordSession(in *GraphState, sessions *statex.Manager) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	session, err := sessions.Get(in.SessionID)
	if err != nil {
		return nil, err
	}
	session.Record(in.Text, in.Result.Summary, in.Result.Log, in.Now)
	return in, nil
}
