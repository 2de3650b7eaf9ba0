package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
)

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"entities": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"rawFragment":  {Type: genai.TypeString},
					"domainHint":   {Type: genai.TypeString},
					"alternatives": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"confidence":   {Type: genai.TypeNumber},
					"title":        {Type: genai.TypeString},
					"fields": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name":  {Type: genai.TypeString},
								"value": {Type: genai.TypeString},
							},
							Required: []string{"name", "value"},
						},
					},
					"start": {Type: genai.TypeInteger},
					"end":   {Type: genai.TypeInteger},
				},
				Required: []string{"rawFragment", "domainHint", "confidence", "fields"},
			},
		},
	},
	Required: []string{"entities"},
}

func systemPrompt(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("You split a life-dashboard command into independent facts.\n")
	b.WriteString("Return one entity per fact, in the order they appear in the text.\n")
	b.WriteString("rawFragment must be copied verbatim from the text; start and end are character offsets of it.\n")
	b.WriteString("domainHint is one of the domains below, or \"ambiguous\" with two alternatives when unsure.\n")
	b.WriteString("Always include a \"type\" field (for example weight, expense, workout, meal, task, navigate, delete).\n")
	b.WriteString("Numbers go in fields without units; units go in a separate <field>Unit field.\n")
	b.WriteString("A request to delete or clear records gets an \"action\" field of \"delete\" and a \"target\" field.\n")
	b.WriteString("Never invent facts that are not in the text. Return no entities when there is nothing to record.\n\n")
	b.WriteString("Domains:\n")
	if cat != nil {
		for _, d := range cat.Domains() {
			fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
		}
	}
	return b.String()
}

func userPrompt(text string, hint models.Intent) string {
	if hint.Category == "" {
		return text
	}
	return fmt.Sprintf("Intent hint: %s\nText: %s", hint.Category, text)
}
