// services/renderer.go
package services

import (
	"fmt"
	"strings"

	"streampro-backend/models"
)

// RenderTemplate substitutes the client placeholders into a template body.
// The placeholder set is fixed; anything else in curly braces is left
// untouched so a typo in a template never breaks a send.
func RenderTemplate(content string, client models.Client) string {
	replacer := strings.NewReplacer(
		"{nome}", client.Name,
		"{plano}", client.PlanName,
		"{valor}", fmt.Sprintf("%.2f", client.PlanPrice),
		"{vencimento}", client.DueDate.Format("02/01/2006"),
		"{servidor}", client.Server,
		"{info}", client.OtherInfo,
	)
	return replacer.Replace(content)
}
