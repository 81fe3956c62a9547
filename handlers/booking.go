package handlers

import (
	"net/http"
	"strconv"

	"homeease/models"
	"homeease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateBooking handles POST /api/bookings.
func (hb *HandlerBundle) CreateBooking(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	b, err := hb.Bookings.Create(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("booking created", zap.String("bookingId", b.ID), zap.String("userId", actor.ID))
	utils.RespondOK(c, http.StatusOK, "Booking created", models.CreateBookingResponse{
		BookingID:    b.ID,
		SerialNumber: b.SerialNumber,
		Status:       b.Status,
	})
}

// GetBooking handles GET /api/bookings/:id.
func (hb *HandlerBundle) GetBooking(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	b, err := hb.Bookings.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", b)
}

// ListBookings handles GET /api/bookings?page=&pageSize=&status=.
func (hb *HandlerBundle) ListBookings(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	status := models.BookingStatus(c.Query("status"))

	result, err := hb.Bookings.List(c.Request.Context(), actor, page, pageSize, status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", result)
}

// UpdateBooking handles PUT /api/bookings/:id.
func (hb *HandlerBundle) UpdateBooking(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	b, err := hb.Bookings.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking updated", b)
}

// ConfirmBooking handles POST /api/bookings/confirm.
func (hb *HandlerBundle) ConfirmBooking(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	b, err := hb.Bookings.Confirm(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	message := "Booking confirmed"
	if !req.IsConfirmed {
		message = "Booking rejected"
	}
	utils.RespondOK(c, http.StatusOK, message, b)
}

// CancelBooking handles POST /api/bookings/cancel.
func (hb *HandlerBundle) CancelBooking(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	outcome, err := hb.Bookings.Cancel(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking cancelled", outcome)
}

// CompleteBooking handles POST /api/bookings/:id/complete.
func (hb *HandlerBundle) CompleteBooking(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	b, err := hb.Bookings.Complete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking completed", b)
}

// CheckAvailability handles GET /api/providers/:id/availability?date=&time=&duration=.
func (hb *HandlerBundle) CheckAvailability(c *gin.Context) {
	var q struct {
		Date     string `form:"date" binding:"required,ymd"`
		Time     string `form:"time" binding:"required,hhmm"`
		Duration int    `form:"duration" binding:"required,min=5,max=720"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	resp, err := hb.Bookings.CheckAvailability(c.Request.Context(), c.Param("id"), q.Date, q.Time, q.Duration)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", resp)
}
