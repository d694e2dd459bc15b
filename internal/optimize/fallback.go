package optimize

import (
	"fmt"

	"github.com/felixbrock/promptforge/internal/domain"
)

// FallbackPrompt is the deterministic local rewrite used when a provider call
// fails or the speed-mode deadline fires. It never returns an empty string and
// never uses the influence template.
func FallbackPrompt(strat domain.Strategy, req domain.OptimizationRequest) string {
	var text string

	switch strat.Id {
	case "clarity":
		text = fmt.Sprintf("State the goal plainly and leave no room for interpretation: %s\n\n"+
			"Define every term that could be read two ways, name the intended audience, and "+
			"describe what a complete answer must contain.", req.OriginalPrompt)
	case "specificity":
		text = fmt.Sprintf("Make this request concrete and measurable: %s\n\n"+
			"Name the exact inputs and outputs, give quantities and ranges where they apply, "+
			"and state the acceptance criteria a correct answer has to meet.", req.OriginalPrompt)
	case "structure":
		text = fmt.Sprintf("Answer the following request in clearly separated sections: %s\n\n"+
			"1. Context and assumptions\n2. Requirements\n3. The answer itself\n4. A short summary of limitations.", req.OriginalPrompt)
	case "efficiency":
		text = fmt.Sprintf("Answer this request as directly as possible, with no filler or restating of the question: %s\n\n"+
			"Prefer short sentences and include only information the request actually needs.", req.OriginalPrompt)
	case "constraints":
		text = fmt.Sprintf("Answer the following request within explicit boundaries: %s\n\n"+
			"Stay strictly on topic, keep the answer proportionate to the question, and state any "+
			"assumption you had to make. Do not introduce requirements the request does not imply.", req.OriginalPrompt)
	default:
		text = fmt.Sprintf("Improve the precision and completeness of this request, then answer it: %s", req.OriginalPrompt)
	}

	if hint := outputHint(req.OutputType); hint != "" {
		text += "\n\n" + hint
	}
	if req.TaskDescription != "" {
		text += "\n\nTask description: " + req.TaskDescription
	}

	return text
}
