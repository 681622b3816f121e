package slack

import (
	"fmt"
	"strings"

	"decision-ledger-be/internal/entity"
)

// Block is one Block Kit element, serialized as-is.
type Block = map[string]interface{}

// View is a modal definition for views.open.
type View = map[string]interface{}

const (
	ActionConfirm        = "confirm_decision"
	ActionEdit           = "edit_decision"
	ActionIgnore         = "ignore_decision"
	EditModalCallbackID  = "edit_decision_modal"
	maxSearchResults     = 5
	maxSearchSummaryRune = 200
)

func plainText(s string) map[string]interface{} {
	return map[string]interface{}{"type": "plain_text", "text": s}
}

func mrkdwn(s string) map[string]interface{} {
	return map[string]interface{}{"type": "mrkdwn", "text": s}
}

func header(s string) Block {
	return Block{"type": "header", "text": plainText(s)}
}

func section(s string) Block {
	return Block{"type": "section", "text": mrkdwn(s)}
}

func contextLine(s string) Block {
	return Block{"type": "context", "elements": []interface{}{mrkdwn(s)}}
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func tagsText(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}

func titleAndSummary(d *entity.Decision) string {
	return fmt.Sprintf("*%s*\n%s", d.Title, deref(d.Summary, ""))
}

func ConfirmationBlocks(d *entity.Decision) []Block {
	confidence := "N/A"
	if d.Confidence > 0 {
		confidence = fmt.Sprintf("%.0f%%", d.Confidence*100)
	}
	button := func(label, actionID, style string) map[string]interface{} {
		b := map[string]interface{}{
			"type":      "button",
			"text":      plainText(label),
			"action_id": actionID,
			"value":     d.Id.String(),
		}
		if style != "" {
			b["style"] = style
		}
		return b
	}

	return []Block{
		header("📋 Decision Detected"),
		section(titleAndSummary(d)),
		contextLine(fmt.Sprintf("*Owner:* %s | *Channel:* #%s | *Tags:* %s | *Confidence:* %s",
			deref(d.OwnerName, "Unknown"),
			deref(d.SourceChannelName, "unknown"),
			tagsText(d.Tags),
			confidence,
		)),
		{
			"type": "actions",
			"elements": []interface{}{
				button("Confirm", ActionConfirm, "primary"),
				button("Edit", ActionEdit, ""),
				button("Ignore", ActionIgnore, "danger"),
			},
		},
	}
}

func ConfirmedBlocks(d *entity.Decision) []Block {
	return []Block{
		header("✅ Decision Confirmed"),
		section(titleAndSummary(d)),
		contextLine(fmt.Sprintf("*Owner:* %s | *Tags:* %s | *Confirmed by:* <@%s>",
			deref(d.OwnerName, "Unknown"),
			tagsText(d.Tags),
			deref(d.ConfirmedBy, ""),
		)),
	}
}

func IgnoredBlocks(d *entity.Decision) []Block {
	return []Block{
		header("❌ Decision Ignored"),
		section(fmt.Sprintf("~%s~", d.Title)),
	}
}

func ExpiredBlocks(d *entity.Decision) []Block {
	return []Block{
		header("⌛ Confirmation Expired"),
		section(fmt.Sprintf("~%s~", d.Title)),
		contextLine("No one confirmed this decision within 48 hours."),
	}
}

func SearchResultBlocks(answer string, decisions []*entity.Decision) []Block {
	blocks := []Block{section(answer)}
	if len(decisions) == 0 {
		return blocks
	}

	blocks = append(blocks, Block{"type": "divider"})
	for i, d := range decisions {
		if i == maxSearchResults {
			break
		}
		line := fmt.Sprintf("*%s*", d.Title)
		if summary := deref(d.Summary, ""); summary != "" {
			r := []rune(summary)
			if len(r) > maxSearchSummaryRune {
				r = r[:maxSearchSummaryRune]
			}
			line += "\n" + string(r)
		}
		if len(d.Tags) > 0 {
			line += fmt.Sprintf("\n_Tags: %s_", strings.Join(d.Tags, ", "))
		}
		blocks = append(blocks, section(line))
	}
	return blocks
}

func textInput(blockID, actionID, label, initial string, multiline, optional bool) Block {
	element := map[string]interface{}{
		"type":          "plain_text_input",
		"action_id":     actionID,
		"initial_value": initial,
	}
	if multiline {
		element["multiline"] = true
	}
	b := Block{
		"type":     "input",
		"block_id": blockID,
		"element":  element,
		"label":    plainText(label),
	}
	if optional {
		b["optional"] = true
	}
	return b
}

// EditModal prefills the decision's editable fields. private_metadata
// carries the decision id back on submission.
func EditModal(d *entity.Decision) View {
	tags := textInput("tags_block", "tags_input", "Tags", strings.Join(d.Tags, ", "), false, true)
	tags["element"].(map[string]interface{})["placeholder"] = plainText("comma-separated tags")

	return View{
		"type":             "modal",
		"callback_id":      EditModalCallbackID,
		"private_metadata": d.Id.String(),
		"title":            plainText("Edit Decision"),
		"submit":           plainText("Save"),
		"blocks": []Block{
			textInput("title_block", "title_input", "Title", d.Title, false, false),
			textInput("summary_block", "summary_input", "Summary", deref(d.Summary, ""), true, true),
			textInput("rationale_block", "rationale_input", "Rationale", deref(d.Rationale, ""), true, true),
			tags,
		},
	}
}

const UsageText = "*Usage:* `/decision <query>`\n" +
	"Search your team's decision history.\n\n" +
	"*Examples:*\n" +
	"• `/decision why did we choose Postgres?`\n" +
	"• `/decision authentication approach`\n" +
	"• `/decision pricing model changes`"

const SearchingText = "🔍 Searching decisions..."
