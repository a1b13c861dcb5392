package analysis

import "strings"

// prefilterKeywords gates items before the costly AI call. This is a
// cost-control heuristic, not a relevance guarantee: atypically phrased
// disaster language produces false negatives.
var prefilterKeywords = []string{
	"emergency", "disaster", "flood", "fire", "earthquake", "storm",
	"hurricane", "tornado", "landslide", "evacuation", "rescue",
	"alert", "warning", "urgent", "crisis", "damage", "destroyed",
	"casualties", "injured", "missing", "shelter", "relief",
	"emergency services", "first responders", "fema", "red cross",
}

// fallbackDisasterKeywords drive the heuristic relevance score when both
// model tiers fail.
var fallbackDisasterKeywords = []string{
	"flood", "fire", "earthquake", "storm", "hurricane", "tornado",
	"landslide", "emergency", "disaster", "evacuation", "rescue",
}

var fallbackUrgencyKeywords = []string{
	"urgent", "critical", "emergency", "help", "rescue", "evacuate",
	"danger", "life-threatening", "immediate",
}

// PotentiallyRelevant reports whether content mentions any disaster term and
// is worth sending to the classifier.
func PotentiallyRelevant(content string) bool {
	lower := strings.ToLower(content)
	return containsAny(lower, prefilterKeywords)
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
