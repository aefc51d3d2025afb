package usecase

import (
	"context"
	"fmt"
	"strings"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// Tone labels embedded into the drafting prompt.
const (
	ToneTechnical = "technical"
	ToneVisionary = "visionary"
)

var technicalRoles = map[string]struct{}{
	"cto":           {},
	"lead engineer": {},
}

// Drafter writes one cold email body per lead.
type Drafter struct {
	model   ports.Model
	persona domain.Persona
}

// NewDrafter wires the model and the signing persona.
func NewDrafter(model ports.Model, persona domain.Persona) *Drafter {
	return &Drafter{model: model, persona: persona}
}

// Draft invokes the model once and returns its answer trimmed, unvalidated.
func (d *Drafter) Draft(ctx context.Context, lead domain.Lead) (string, error) {
	if d.model == nil {
		return "", fmt.Errorf("drafter is not configured")
	}

	body, err := d.model.Generate(ctx, d.buildPrompt(lead))
	if err != nil {
		return "", fmt.Errorf("draft email for %s: %w", lead.Email, err)
	}
	return strings.TrimSpace(body), nil
}

// ToneFor picks the prompt tone from the lead's role.
func ToneFor(role string) string {
	if _, ok := technicalRoles[strings.ToLower(strings.TrimSpace(role))]; ok {
		return ToneTechnical
	}
	return ToneVisionary
}

func (d *Drafter) buildPrompt(lead domain.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a cold outreach email to %s %s at %s.\n\n", lead.Role, lead.Name, lead.Company)

	b.WriteString("Use this info:\n")
	fmt.Fprintf(&b, "- My Name: %s\n", d.persona.Name)
	fmt.Fprintf(&b, "- My Title: %s\n", d.persona.Title)
	fmt.Fprintf(&b, "- My Company: %s\n", d.persona.Company)
	fmt.Fprintf(&b, "- My Contact: %s\n\n", d.persona.Contact)

	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Mention how we can help with: %q\n\n", lead.Rationale)

	b.WriteString("Objective:\n")
	b.WriteString("- Get their attention with a **psychological hook** like:\n")
	b.WriteString("  \"You're losing clients because...\" or\n")
	b.WriteString("  \"We noticed your site is...\" or\n")
	b.WriteString("  \"You may be missing out on leads due to...\"\n\n")

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", ToneFor(lead.Role))
	b.WriteString("- Length: 50-80 words max\n")
	b.WriteString("- No subject line inside the body\n")
	b.WriteString("- 2-3 short paragraphs\n")
	b.WriteString("- No self-praise like \"we are best\", focus on **their problem**.\n")
	b.WriteString("- No generic claims, use one **concrete, observed insight**\n")
	b.WriteString("- Make it feel like we researched their business\n")
	b.WriteString("- Do NOT list all our services\n")
	b.WriteString("- Mention **only 1 specific thing** we could help with\n")
	b.WriteString("- End with a soft, casual CTA like \"Worth a quick chat?\" or \"Open to a quick call?\"\n\n")

	b.WriteString("Output Format:\n")
	b.WriteString("Plain text only, use \\n for line breaks. No HTML, no markdown.\n")
	b.WriteString("Only output the **email body**, not the subject line.\n")
	return b.String()
}
