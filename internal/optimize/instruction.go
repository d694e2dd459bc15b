package optimize

import (
	"fmt"
	"strings"

	"github.com/felixbrock/promptforge/internal/domain"
)

// buildInstruction assembles the full instruction sent to the optimization
// model for one strategy: template, original prompt, meta-instructions from
// the task description, output-format hint, influence blending rules, token
// budget phrasing and the strict output rules.
func buildInstruction(req domain.OptimizationRequest, strat domain.Strategy, retry bool) string {
	var b strings.Builder

	b.WriteString(strat.Instruction)
	b.WriteString("\n\nOriginal prompt:\n")
	b.WriteString(req.OriginalPrompt)

	if req.TaskDescription != "" {
		b.WriteString("\n\nTask context: ")
		b.WriteString(req.TaskDescription)
		b.WriteString("\nUse this description to fill in requirements the original prompt leaves implicit.")
	}

	if hint := outputHint(req.OutputType); hint != "" {
		b.WriteString("\n\n")
		b.WriteString(hint)
	}

	if req.Influence != "" {
		b.WriteString("\n\n")
		b.WriteString(influenceRules(req.Influence, req.InfluenceWeight))
	}

	if req.MaxTokens != nil {
		fmt.Fprintf(&b, "\n\nPhrase the improved prompt so a correct answer fits within roughly %d tokens.", *req.MaxTokens)
	}

	if retry {
		b.WriteString("\n\nProduce a noticeably different version than any previous attempt.")
	}

	fmt.Fprintf(&b, "\n\nReturn only the improved prompt between %s and %s tags. "+
		"No commentary before or after the tags. Do not include code unless the original prompt explicitly asks for code.",
		sentinelOpen, sentinelClose)

	return b.String()
}

func outputHint(t domain.OutputType) string {
	switch t {
	case domain.OutputCode:
		return "The improved prompt must ask for working code as the answer."
	case domain.OutputJSON:
		return "The improved prompt must ask for the answer as valid JSON and describe the expected fields."
	case domain.OutputList:
		return "The improved prompt must ask for the answer as a concise bulleted or numbered list."
	case domain.OutputEssay:
		return "The improved prompt must ask for a structured long-form answer with an introduction and a conclusion."
	default:
		return ""
	}
}

// influenceRules maps the influence weight onto one of three blending bands.
// At weight 0 the template text is deliberately left out of the instruction so
// it cannot leak into the result.
func influenceRules(template string, weight int) string {
	switch {
	case weight == 0:
		return "A reference template was provided with an influence weight of 0. " +
			"Ignore it entirely; it must not affect the improved prompt in any way."
	case weight < 30:
		return fmt.Sprintf("Reference template (influence weight %d/100). Treat it as loose inspiration only; "+
			"do not copy its structure or wording:\n%s", weight, template)
	case weight < 60:
		return fmt.Sprintf("Reference template (influence weight %d/100). Blend its style with the original prompt "+
			"roughly in proportion to the weight:\n%s", weight, template)
	default:
		return fmt.Sprintf("Reference template (influence weight %d/100). Use it as the primary guide; "+
			"the original prompt only supplies the topic:\n%s", weight, template)
	}
}
