// services/payment_service.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/config"
	"streampro-backend/models"
	"streampro-backend/utils"
)

// PaymentService reconciles reseller subscription payments against the
// Mercado Pago API. It runs on its own poll interval with its own retry
// budget (the HTTP client timeout); it shares nothing with the reminder
// engine except the notifier.
type PaymentService struct {
	db       *gorm.DB
	http     *http.Client
	token    string
	baseURL  string
	price    float64
	clock    *utils.Clock
	notifier Notifier
}

func NewPaymentService(db *gorm.DB, settings config.Settings, clock *utils.Clock, notifier Notifier) *PaymentService {
	return &PaymentService{
		db:       db,
		http:     &http.Client{Timeout: 15 * time.Second},
		token:    settings.MercadoPagoToken,
		baseURL:  settings.MercadoPagoBaseURL,
		price:    settings.SubscriptionPrice,
		clock:    clock,
		notifier: notifier,
	}
}

type paymentStatus struct {
	ID           int64   `json:"id"`
	Status       string  `json:"status"`
	StatusDetail string  `json:"status_detail"`
	Amount       float64 `json:"transaction_amount"`
}

type pixPaymentResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CheckPending looks at subscriptions created in the last 24 hours and
// still pending, asks the provider for their current status, and activates
// the account on approval. Older pendings are expired.
func (p *PaymentService) CheckPending() {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	var pending []models.Subscription
	if err := p.db.Where("status = ? AND created_at >= ?", models.SubscriptionPending, cutoff).
		Find(&pending).Error; err != nil {
		log.Printf("Failed to fetch pending subscriptions: %v", err)
		return
	}

	for _, sub := range pending {
		status, err := p.fetchPaymentStatus(sub.PaymentID)
		if err != nil {
			log.Printf("Payment %s: status check failed: %v", sub.PaymentID, err)
			continue
		}

		switch status.Status {
		case "approved":
			if err := p.approveSubscription(sub); err != nil {
				log.Printf("Payment %s: approval failed: %v", sub.PaymentID, err)
			}
		case "rejected", "cancelled":
			if err := p.db.Model(&models.Subscription{}).Where("id = ?", sub.ID).
				Update("status", status.Status).Error; err != nil {
				log.Printf("Payment %s: status update failed: %v", sub.PaymentID, err)
			} else {
				log.Printf("Payment %s marked %s", sub.PaymentID, status.Status)
			}
		}
	}

	// Expire pendings the provider never resolved.
	result := p.db.Model(&models.Subscription{}).
		Where("status = ? AND created_at < ?", models.SubscriptionPending, cutoff).
		Update("status", models.SubscriptionExpired)
	if result.Error != nil {
		log.Printf("Failed to expire stale subscriptions: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Expired %d stale pending payment(s)", result.RowsAffected)
	}
}

func (p *PaymentService) approveSubscription(sub models.Subscription) error {
	now := time.Now().UTC()
	expires := now.AddDate(0, 0, 30)

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
			"status":     models.SubscriptionApproved,
			"paid_at":    now,
			"expires_at": expires,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", sub.UserID).Updates(map[string]interface{}{
			"is_trial":          false,
			"is_active":         true,
			"last_payment_date": now,
			"next_due_date":     expires,
		}).Error
	})
	if err != nil {
		return err
	}

	log.Printf("Payment %s approved; user %s activated until %s",
		sub.PaymentID, sub.UserID, expires.Format("02/01/2006"))

	if p.notifier != nil {
		text := fmt.Sprintf(
			"Pagamento aprovado! Valor: R$ %.2f. Sua conta esta ativa ate %s.",
			sub.Amount, expires.In(p.clock.Location()).Format("02/01/2006"))
		if err := p.notifier.Notify(sub.UserID, text); err != nil {
			log.Printf("User %s: payment notification failed: %v", sub.UserID, err)
		}
	}
	return nil
}

func (p *PaymentService) fetchPaymentStatus(paymentID string) (*paymentStatus, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/v1/payments/%s", p.baseURL, paymentID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from payment provider", resp.StatusCode)
	}

	var status paymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode payment status: %w", err)
	}
	return &status, nil
}

// ProcessWebhook handles a provider notification for one payment. The
// regular poll would catch the payment anyway; the webhook just shortens
// the wait.
func (p *PaymentService) ProcessWebhook(paymentID string) error {
	status, err := p.fetchPaymentStatus(paymentID)
	if err != nil {
		return fmt.Errorf("webhook status lookup: %w", err)
	}
	if status.Status != "approved" {
		return nil
	}

	var sub models.Subscription
	err = p.db.Where("payment_id = ? AND status = ?", paymentID, models.SubscriptionPending).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // already processed or unknown payment
	}
	if err != nil {
		return err
	}
	return p.approveSubscription(sub)
}

// CreatePixPayment creates a Pix charge for one month of subscription and
// records it as a pending Subscription.
func (p *PaymentService) CreatePixPayment(userID uuid.UUID, email string) (*pixPaymentResponse, error) {
	payload := map[string]interface{}{
		"transaction_amount": p.price,
		"description":        "Assinatura Mensal - StreamPro",
		"payment_method_id":  "pix",
		"payer":              map[string]string{"email": email},
		"external_reference": fmt.Sprintf("streampro_%s_%d", userID, time.Now().Unix()),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, p.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d creating payment", resp.StatusCode)
	}

	var created pixPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}

	sub := models.Subscription{
		UserID:    userID,
		PaymentID: strconv.FormatInt(created.ID, 10),
		Amount:    p.price,
		Status:    models.SubscriptionPending,
	}
	if err := p.db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("record subscription: %w", err)
	}

	return &created, nil
}
