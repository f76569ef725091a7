package runnernode

import (
	"fmt"
	"strings"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		reply = thinkingFallback
	}
	return GraphOutput{Reply: reply}, nil
}
