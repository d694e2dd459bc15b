package strategy

import "github.com/felixbrock/promptforge/internal/domain"

// Catalog is the fixed set of rewriting strategies. Declaration order is the
// deterministic default order used before enough history exists.
var Catalog = []domain.Strategy{
	{
		Id:          "clarity",
		DisplayName: "Clarity",
		Weight:      0.85,
		Instruction: "Improve the following prompt so it is unambiguous and easy to act on. " +
			"State the goal in plain language, resolve vague references, and spell out what a " +
			"correct answer must contain. Improve the prompt, do not answer it.",
	},
	{
		Id:          "specificity",
		DisplayName: "Specificity",
		Weight:      0.8,
		Instruction: "Improve the following prompt by making it more specific. Add concrete " +
			"details, exact quantities, named technologies and measurable acceptance criteria " +
			"where the original is generic. Improve the prompt, do not answer it.",
	},
	{
		Id:          "structure",
		DisplayName: "Structure",
		Weight:      0.75,
		Instruction: "Improve the following prompt by giving it an explicit structure. " +
			"Organize it into sections covering context, requirements and expected output " +
			"format, using numbered steps where order matters. Improve the prompt, do not answer it.",
	},
	{
		Id:          "efficiency",
		DisplayName: "Efficiency",
		Weight:      0.7,
		Instruction: "Improve the following prompt by making it as concise as possible without " +
			"losing meaning. Remove filler, merge redundant requirements and prefer short " +
			"direct sentences. Improve the prompt, do not answer it.",
	},
	{
		Id:          "constraints",
		DisplayName: "Constraints",
		Weight:      0.65,
		Instruction: "Improve the following prompt by stating its constraints explicitly. " +
			"Add boundaries on scope, length, format and tone, and call out what the answer " +
			"must not do. Improve the prompt, do not answer it.",
	},
}

func ById(id string) (domain.Strategy, bool) {
	for _, s := range Catalog {
		if s.Id == id {
			return s, true
		}
	}
	return domain.Strategy{}, false
}

func IsKnown(id string) bool {
	_, ok := ById(id)
	return ok
}
