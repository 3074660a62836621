package prompts

import (
	"fmt"
	"strings"

	"survey-annotator/internal/config"
	"survey-annotator/internal/schema"
)

// BuildInstructions собирает системную инструкцию из схемы кодирования
func BuildInstructions(scheme *config.Scheme) string {
	var builder strings.Builder

	builder.WriteString(strings.TrimSpace(scheme.Instructions))
	builder.WriteString("\n")

	if len(scheme.Categories) > 0 {
		builder.WriteString("\nSCHÉMA DE CODAGE:\n")
		for _, category := range scheme.Categories {
			appendCategory(&builder, category)
		}
	}

	builder.WriteString(fmt.Sprintf("\nCodes autorisés: %s\n", quoteAll(scheme.GetAllowedAnswers())))

	return builder.String()
}

// BuildStructuredInstructions добавляет требования к JSON ответу.
// В режиме json_object схема передается только через промпт.
func BuildStructuredInstructions(scheme *config.Scheme, mode string) string {
	var builder strings.Builder

	builder.WriteString(BuildInstructions(scheme))
	builder.WriteString("\nRéponds avec un objet JSON contenant les champs \"reasoning\" (ton raisonnement) et \"answer\" (le code).\n")

	if mode == config.ModeJSONObject {
		builder.WriteString("Le JSON doit respecter exactement ce schéma:\n")
		builder.WriteString(schema.SchemaJSON(scheme.GetAllowedAnswers()))
		builder.WriteString("\nRenvoie UNIQUEMENT le JSON, sans markdown ni commentaire.\n")
	}

	return builder.String()
}

func appendCategory(builder *strings.Builder, category config.Category) {
	if category.Description != "" {
		builder.WriteString(fmt.Sprintf("- %s = %s: %s\n", category.Code, category.Label, category.Description))
	} else {
		builder.WriteString(fmt.Sprintf("- %s = %s\n", category.Code, category.Label))
	}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
