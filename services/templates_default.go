// services/templates_default.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/models"
)

type defaultTemplate struct {
	Name         string
	TemplateType string
	Subject      string
	Content      string
}

var defaultTemplates = []defaultTemplate{
	{
		Name:         "Lembrete 2 dias antes",
		TemplateType: models.BucketTwoDaysBefore.CanonicalTemplateType(),
		Subject:      "Vencimento em 2 dias",
		Content:      "Ola {nome}! Seu plano \"{plano}\" vence em 2 dias, em {vencimento}.\nValor: R$ {valor}\nPara renovar, entre em contato conosco.",
	},
	{
		Name:         "Lembrete 1 dia antes",
		TemplateType: models.BucketOneDayBefore.CanonicalTemplateType(),
		Subject:      "Vencimento amanha",
		Content:      "Ola {nome}! Seu plano \"{plano}\" vence AMANHA ({vencimento}).\nValor: R$ {valor}\nNao esqueca de renovar para continuar aproveitando nossos servicos.",
	},
	{
		Name:         "Vencimento hoje",
		TemplateType: models.BucketDueToday.CanonicalTemplateType(),
		Subject:      "Vencimento hoje",
		Content:      "Atencao {nome}! Seu plano \"{plano}\" vence HOJE ({vencimento}).\nValor: R$ {valor}\nRenove agora para nao perder o acesso.",
	},
	{
		Name:         "Em atraso",
		TemplateType: models.BucketOverdue.CanonicalTemplateType(),
		Subject:      "Plano vencido",
		Content:      "Ola {nome}, seu plano \"{plano}\" venceu em {vencimento}.\nValor: R$ {valor}\nRenove o quanto antes para reativar seus servicos.",
	},
	{
		Name:         "Boas-vindas",
		TemplateType: models.TemplateTypeWelcome,
		Subject:      "Bem-vindo!",
		Content:      "Seja bem-vindo(a), {nome}! Seu plano \"{plano}\" esta ativo e vence em {vencimento}.\nServidor: {servidor}\nValor: R$ {valor}",
	},
	{
		Name:         "Renovacao confirmada",
		TemplateType: models.TemplateTypeRenewal,
		Subject:      "Plano renovado",
		Content:      "Ola {nome}! Seu plano \"{plano}\" foi renovado com sucesso.\nNovo vencimento: {vencimento}\nValor: R$ {valor}\nObrigado pela confianca!",
	},
}

// CreateDefaultTemplates seeds the standard template set for a new account.
// Existing templates of the same type are left alone.
func CreateDefaultTemplates(db *gorm.DB, userID uuid.UUID) error {
	for _, def := range defaultTemplates {
		var existing models.MessageTemplate
		err := db.Where("user_id = ? AND template_type = ?", userID, def.TemplateType).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		template := models.MessageTemplate{
			UserID:       userID,
			Name:         def.Name,
			TemplateType: def.TemplateType,
			Subject:      def.Subject,
			Content:      def.Content,
			IsActive:     true,
			IsDefault:    true,
		}
		if err := db.Create(&template).Error; err != nil {
			return err
		}
	}
	return nil
}

// RestoreDefaultTemplates resets the default template set to its original
// content, recreating any that were deleted.
func RestoreDefaultTemplates(db *gorm.DB, userID uuid.UUID) error {
	for _, def := range defaultTemplates {
		var existing models.MessageTemplate
		err := db.Where("user_id = ? AND template_type = ? AND is_default = ?",
			userID, def.TemplateType, true).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			template := models.MessageTemplate{
				UserID:       userID,
				Name:         def.Name,
				TemplateType: def.TemplateType,
				Subject:      def.Subject,
				Content:      def.Content,
				IsActive:     true,
				IsDefault:    true,
			}
			if err := db.Create(&template).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		existing.Name = def.Name
		existing.Subject = def.Subject
		existing.Content = def.Content
		existing.IsActive = true
		if err := db.Save(&existing).Error; err != nil {
			return err
		}
	}
	return nil
}
