package retrieval

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

const (
	// Descriptions longer than this are cut at a word boundary.
	maxDescriptionChars = 500
	// Tags beyond this count are dropped from a context block.
	maxTagsPerItem = 6

	defaultTokenBudget = 2000
	tokenEncoding      = "o200k_base"
)

// TokenCounter measures text against the assembler's token budget.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a plain function to the TokenCounter interface.
type TokenCounterFunc func(text string) int

// Count implements TokenCounter.
func (f TokenCounterFunc) Count(text string) int { return f(text) }

// NewTiktokenCounter returns a TokenCounter backed by the o200k_base
// encoding. The encoding table is fetched and cached on first use.
func NewTiktokenCounter() (TokenCounter, error) {
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding: %w", err)
	}
	return TokenCounterFunc(func(text string) int {
		return len(encoder.Encode(text, nil, nil))
	}), nil
}

// Assembler formats a FusedContext into the text block handed to the
// generation step. The ranker truncates by item count; the assembler
// owns the token budget and drops trailing items that would exceed it.
type Assembler struct {
	counter TokenCounter
	budget  int
}

// NewAssembler creates an assembler with the given counter and token
// budget. A nil counter disables budget trimming; a budget <= 0 uses the
// default.
func NewAssembler(counter TokenCounter, budget int) *Assembler {
	if budget <= 0 {
		budget = defaultTokenBudget
	}
	return &Assembler{counter: counter, budget: budget}
}

// Assemble renders the context as numbered blocks in ranked order. Items
// are dropped from the tail once the token budget is exhausted; the
// highest-ranked item is always included so the context is never empty
// when its input is not.
func (a *Assembler) Assemble(fused travel.FusedContext) string {
	if len(fused.Items) == 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	count := 0
	for _, item := range fused.Items {
		block := formatBlock(count+1, item)
		if a.counter != nil {
			cost := a.counter.Count(block)
			if count > 0 && used+cost > a.budget {
				break
			}
			used += cost
		}
		b.WriteString(block)
		count++
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatBlock(position int, fi travel.FusedItem) string {
	var b strings.Builder
	item := fi.Item

	fmt.Fprintf(&b, "[%d] %s (%s)\n", position, item.Name, item.Type)

	if location := formatLocation(item); location != "" {
		fmt.Fprintf(&b, "    Location: %s\n", location)
	}
	fmt.Fprintf(&b, "    Relevance: %.2f (%s)\n", fi.Score, fi.Origin)
	if len(item.Tags) > 0 {
		tags := item.Tags
		if len(tags) > maxTagsPerItem {
			tags = tags[:maxTagsPerItem]
		}
		fmt.Fprintf(&b, "    Tags: %s\n", strings.Join(tags, ", "))
	}
	if item.BestTime != "" {
		fmt.Fprintf(&b, "    Best time to visit: %s\n", item.BestTime)
	}
	if desc := clampDescription(item); desc != "" {
		fmt.Fprintf(&b, "    %s\n", desc)
	}
	if fi.Origin == travel.OriginGraph && fi.Seed != "" {
		fmt.Fprintf(&b, "    Nearby: connected to %s via %s (%d hop%s)\n",
			fi.Seed, fi.Relation, fi.Hops, plural(fi.Hops))
	}
	b.WriteString("\n")
	return b.String()
}

func formatLocation(item travel.Item) string {
	switch {
	case item.City != "" && item.Region != "":
		return item.City + ", " + item.Region
	case item.City != "":
		return item.City
	default:
		return item.Region
	}
}

func clampDescription(item travel.Item) string {
	desc := item.Description
	if desc == "" {
		desc = item.SemanticText
	}
	if len(desc) <= maxDescriptionChars {
		return desc
	}
	cut := desc[:maxDescriptionChars]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
