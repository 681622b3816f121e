package prompt

import (
	"fmt"
	"strings"
	"time"
)

// DecisionContext is one retrieved decision as shown to the model.
type DecisionContext struct {
	Title          string
	Summary        string
	Rationale      string
	OwnerName      string
	DecisionMadeAt *time.Time
	SourceURL      string
	Tickets        []string
	PRs            []string
	URLs           []string
}

const NoDecisionsFound = "No relevant decisions found."

const SynthesisSystemPrompt = `You are a decision knowledge assistant for an engineering team. An engineer is asking a question, and you have retrieved relevant past decisions as context.

Guidelines:
- Answer concisely and directly. Engineers value brevity.
- Reference specific decisions by title when relevant.
- Include the decision owner and approximate date when it adds useful context.
- If a decision has a source_url, mention it so the engineer can read the original discussion.
- If decisions conflict or have been superseded, note that clearly.
- If no retrieved decisions are relevant to the question, say so plainly: "I didn't find any recorded decisions about that."
- Do not fabricate decisions or information not present in the context.
- If the context partially answers the question, share what you have and note what's missing.
- Use Slack-compatible markdown (bold with *, code with ` + "`" + `, lists with •).`

// DecisionBuilder renders retrieved decisions and the question into the
// user message for synthesis.
type DecisionBuilder struct {
	query     string
	decisions []DecisionContext
}

func NewDecisionBuilder(query string, decisions []DecisionContext) *DecisionBuilder {
	return &DecisionBuilder{query: query, decisions: decisions}
}

func (b *DecisionBuilder) Build() string {
	return fmt.Sprintf("Retrieved decisions:\n%s\n\nQuestion: %s", b.Context(), b.query)
}

func (b *DecisionBuilder) Context() string {
	if len(b.decisions) == 0 {
		return NoDecisionsFound
	}

	blocks := make([]string, 0, len(b.decisions))
	for i, d := range b.decisions {
		var sb strings.Builder
		title := d.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&sb, "Decision #%d: %s", i+1, title)
		writeField(&sb, "Summary", d.Summary)
		writeField(&sb, "Rationale", d.Rationale)
		writeField(&sb, "Owner", d.OwnerName)
		if d.DecisionMadeAt != nil {
			writeField(&sb, "Date", d.DecisionMadeAt.UTC().Format(time.RFC3339))
		}
		writeField(&sb, "Source", d.SourceURL)

		artifacts := make([]string, 0, len(d.Tickets)+len(d.PRs)+len(d.URLs))
		artifacts = append(artifacts, d.Tickets...)
		for _, pr := range d.PRs {
			artifacts = append(artifacts, "PR "+pr)
		}
		artifacts = append(artifacts, d.URLs...)
		if len(artifacts) > 0 {
			writeField(&sb, "Linked", strings.Join(artifacts, ", "))
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "\n  %s: %s", label, value)
}
