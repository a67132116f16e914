package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"streampro-backend/services"
	"streampro-backend/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
}

// CreatePixPayment starts a Pix charge for one month of subscription and
// returns the QR code data for the frontend to display.
func (ctl *PaymentController) CreatePixPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payment, err := ctl.Payments.CreatePixPayment(user.ID, user.Email)
	if err != nil {
		log.Printf("User %s: pix payment creation failed: %v", user.ID, err)
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to create payment")
		return
	}

	c.JSON(http.StatusCreated, payment)
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// MercadoPagoWebhook receives provider notifications. Mercado Pago sends
// the payment id either in the JSON body (data.id) or as a query
// parameter; both shapes are accepted. The response is always 200 so the
// provider stops retrying — the regular poll covers anything we miss.
func (ctl *PaymentController) MercadoPagoWebhook(c *gin.Context) {
	var body webhookBody
	_ = c.ShouldBindJSON(&body)

	paymentID := body.Data.ID
	if paymentID == "" {
		paymentID = c.Query("id")
	}
	if paymentID == "" {
		paymentID = c.Query("data.id")
	}

	if paymentID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := ctl.Payments.ProcessWebhook(paymentID); err != nil {
		log.Printf("Webhook for payment %s failed: %v", paymentID, err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
