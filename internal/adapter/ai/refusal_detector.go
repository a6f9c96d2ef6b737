package ai

import "strings"

// RefusalAnalysis is the verdict on a provider reply that did not parse.
type RefusalAnalysis struct {
	IsRefusal   bool   `json:"is_refusal"`
	RefusalType string `json:"refusal_type,omitempty"`
	Indicator   string `json:"indicator,omitempty"`
}

// refusalIndicators are checked in order; the first group with a hit names the type.
var refusalIndicators = []struct {
	kind    string
	phrases []string
}{
	{"policy_violation", []string{"policy", "guidelines", "not allowed to"}},
	{"ethical_concerns", []string{"ethical", "harmful", "inappropriate"}},
	{"capability_limitation", []string{"i don't have access", "i do not have access", "i lack the ability", "as an ai"}},
	{"direct_refusal", []string{"i cannot", "i can't", "i'm unable", "i am unable", "i refuse", "i won't"}},
	{"apologetic_refusal", []string{"i'm sorry", "i apologize", "unfortunately", "i'm afraid"}},
}

// DetectRefusal reports whether a reply reads like the model declined the
// task rather than answering in the wrong shape. Replies containing a JSON
// object are never refusals.
func DetectRefusal(response string) RefusalAnalysis {
	if strings.Contains(response, "{") && strings.Contains(response, "}") {
		return RefusalAnalysis{}
	}
	lower := strings.ToLower(response)
	for _, group := range refusalIndicators {
		for _, p := range group.phrases {
			if strings.Contains(lower, p) {
				return RefusalAnalysis{IsRefusal: true, RefusalType: group.kind, Indicator: p}
			}
		}
	}
	return RefusalAnalysis{}
}
