package handlers

import (
	"io"
	"net/http"

	"homeease/models"
	"homeease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBytes = 64 << 10

// ProcessPayment handles POST /api/payment/process.
func (hb *HandlerBundle) ProcessPayment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	result, err := hb.Payments.ProcessPayment(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	message := "Payment completed"
	if !result.IsSuccessful {
		message = "Payment is being processed"
	}
	utils.RespondOK(c, http.StatusOK, message, result)
}

// RefundPayment handles POST /api/payment/:bookingId/refund.
func (hb *HandlerBundle) RefundPayment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.RefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondBindError(c, err)
			return
		}
	}
	req.BookingID = c.Param("bookingId")

	result, err := hb.Payments.RefundPayment(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Refund issued", result)
}

// VerifyPayment handles GET /api/payment/:bookingId/verify.
func (hb *HandlerBundle) VerifyPayment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	result, err := hb.Payments.VerifyPayment(c.Request.Context(), actor, c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", result)
}

// PaymentWebhook handles POST /api/payment/webhook. Authenticity is checked by
// the gateway adapter, so this route carries no bearer token.
func (hb *HandlerBundle) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "could not read request body")
		return
	}

	if err := hb.Payments.HandleWebhook(c.Request.Context(), payload, c.Request.Header); err != nil {
		getLogger(c).Warn("webhook not processed", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "received", nil)
}
