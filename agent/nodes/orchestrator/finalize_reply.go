package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Result.Summary)
	if reply == "" {
		reply = contractx.NoToolsExecuted
	}
	return GraphOutput{
		RequestID: in.RequestID,
		Reply:     reply,
		Result:    in.Result,
		Err:       in.ExecErr,
	}, nil
}
