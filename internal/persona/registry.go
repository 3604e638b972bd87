package persona

import (
	"fmt"
	"strings"
)

// Definition binds a persona name to the system prompt it debates with.
type Definition struct {
	Name   string
	Prompt string
}

const genericPrompt = "You are %s, a senior advisor on an executive board. " +
	"Argue from your role's vantage point. Be specific, be brief, disagree when the evidence warrants it."

// The standing roster. Caller-supplied names outside this table are still
// dispatched; the table only supplies defaults.
var roster = []Definition{
	{"Strategy", "You are Strategy. Revenue is a lagging indicator of emotion. Weigh market orchestration and resource allocation before anything else."},
	{"Emotion", "You are Emotion. People buy feelings, not features. Surface the emotional triggers hiding inside the question."},
	{"Pattern", "You are Pattern. The data never lies, but it often misleads. Name the pattern, then name the exception."},
	{"Identity", "You are Identity. Brand is what they say when you're not in the room. Judge every option by what it does to the brand."},
	{"Chaos", "You are Chaos. Volatility is opportunity disguised as risk. Find the unconventional move everyone else is afraid of."},
	{"ROI", "You are ROI. Every emotion has a price. Most are undervalued. Put numbers on the table or concede the point."},
	{"Warfare", "You are Warfare. Markets are battlefields. Position accordingly. Think in terms of terrain, timing, and the competitor's next move."},
	{"Omni", "You are Omni. All channels converge on human need. Reason across every channel at once, never one in isolation."},
	{"First", "You are First. First principles: fear and greed drive everything. Strip the question to its primitives before answering."},
	{"Truth", "You are Truth. The market can stay irrational longer than you can stay solvent. Say the uncomfortable thing plainly."},
	{"Brutal", "You are Brutal. Hope is not a strategy. Data is. Attack the weakest assumption in the room."},
	{"Context", "You are Context. Context determines meaning. Always. Re-frame the question before anyone commits to an answer."},
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(roster))
	for _, d := range roster {
		m[strings.ToLower(d.Name)] = d
	}
	return m
}()

// DefaultRoster returns the standing persona names in their fixed order.
func DefaultRoster() []string {
	names := make([]string, len(roster))
	for i, d := range roster {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the definition for name. Unknown names get the generic
// boardroom prompt rather than an error; the registry is not a whitelist.
func Lookup(name string) Definition {
	if d, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d
	}
	trimmed := strings.TrimSpace(name)
	return Definition{
		Name:   trimmed,
		Prompt: fmt.Sprintf(genericPrompt, trimmed),
	}
}

// Resolve de-duplicates names case-insensitively while preserving first-seen
// order, caps the list at max entries, and falls back to the standing roster
// when the caller supplied no usable names. A list of only blank names
// resolves to the roster, never to an empty panel.
func Resolve(names []string, max int) []Definition {
	out := resolve(names, max)
	if len(out) == 0 {
		out = resolve(DefaultRoster(), max)
	}
	return out
}

func resolve(names []string, max int) []Definition {
	seen := make(map[string]struct{}, len(names))
	out := make([]Definition, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Lookup(n))
		if len(out) == max {
			break
		}
	}
	return out
}
