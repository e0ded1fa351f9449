package bookings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"srsevents/internal/events"
	"srsevents/internal/shared/utils/response"
	"srsevents/internal/users"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func requestIdentity(c *gin.Context) (uuid.UUID, users.Role, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, "", false
	}
	str, ok := rawID.(string)
	if !ok {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, "", false
	}

	role := users.RoleUser
	if rawRole, exists := c.Get("user_role"); exists {
		if roleStr, ok := rawRole.(string); ok && users.IsValidRole(roleStr) {
			role = users.Role(roleStr)
		}
	}
	return id, role, true
}

func (ctrl *Controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	userID, role, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), userID, role, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "booking created", booking, nil)
}

func (ctrl *Controller) GetBooking(c *gin.Context) {
	userID, role, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), userID, role == users.RoleAdmin, c.Param("bookingId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "booking retrieved", booking, nil)
}

func (ctrl *Controller) DownloadTicket(c *gin.Context) {
	userID, role, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	ticket, contentType, err := ctrl.service.GetTicket(c.Request.Context(), userID, role == users.RoleAdmin, c.Param("bookingId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, string(contentType), ticket)
}

func (ctrl *Controller) GetMyBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid query parameters", nil, err.Error())
		return
	}

	userID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	result, err := ctrl.service.GetUserBookings(c.Request.Context(), userID, &query)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "bookings retrieved", result, nil)
}

func (ctrl *Controller) GetAllBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.GetAllBookings(c.Request.Context(), &query)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "bookings retrieved", result, nil)
}

func (ctrl *Controller) GetBookingsByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid event id", nil, nil)
		return
	}

	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.GetBookingsByEvent(c.Request.Context(), eventID, &query)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "bookings retrieved", result, nil)
}

func (ctrl *Controller) InitiatePayment(c *gin.Context) {
	userID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	order, err := ctrl.service.InitiatePayment(c.Request.Context(), userID, c.Param("bookingId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "payment order created", order, nil)
}

func (ctrl *Controller) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	userID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.VerifyPayment(c.Request.Context(), userID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "payment verified", booking, nil)
}

func (ctrl *Controller) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	userID, role, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), userID, role == users.RoleAdmin, c.Param("bookingId"), req.Reason)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "booking cancelled", booking, nil)
}

func (ctrl *Controller) CompleteBooking(c *gin.Context) {
	booking, err := ctrl.service.CompleteBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "booking completed", booking, nil)
}

func (ctrl *Controller) ScanQR(c *gin.Context) {
	var req ScanQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	operatorID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	result, err := ctrl.service.ScanQR(c.Request.Context(), operatorID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "scan accepted", result, nil)
}

func (ctrl *Controller) ApproveSponsorship(c *gin.Context) {
	memberID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.ApproveSponsorship(c.Request.Context(), memberID, c.Param("bookingId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "sponsorship approved", booking, nil)
}

func (ctrl *Controller) RejectSponsorship(c *gin.Context) {
	memberID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.RejectSponsorship(c.Request.Context(), memberID, c.Param("bookingId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "sponsorship rejected", booking, nil)
}

func (ctrl *Controller) ListPendingApprovals(c *gin.Context) {
	memberID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	approvals, err := ctrl.service.ListPendingApprovals(c.Request.Context(), memberID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "pending approvals retrieved", approvals, nil)
}

func (ctrl *Controller) CreateOfflineBooking(c *gin.Context) {
	var req CreateOfflineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	staffID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.CreateOfflineBooking(c.Request.Context(), staffID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "offline booking created", booking, nil)
}

func (ctrl *Controller) EditOfflineBooking(c *gin.Context) {
	var req EditOfflineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	staffID, _, ok := requestIdentity(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	booking, err := ctrl.service.EditOfflineBooking(c.Request.Context(), staffID, c.Param("bookingId"), &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "offline booking updated", booking, nil)
}

func (ctrl *Controller) DeleteOfflineBooking(c *gin.Context) {
	if err := ctrl.service.DeleteOfflineBooking(c.Request.Context(), c.Param("bookingId")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "offline booking deleted", nil, nil)
}

func (ctrl *Controller) ListOfflineBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.ListOfflineBookings(c.Request.Context(), &query)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "offline bookings retrieved", result, nil)
}

func (ctrl *Controller) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, events.ErrEventNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, ErrNotBookingOwner):
		response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
	case errors.Is(err, ErrValidationFailed):
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, ErrScanRejected):
		response.RespondJSON(c, "error", http.StatusUnprocessableEntity, err.Error(), nil, nil)
	case errors.Is(err, ErrPaymentVerificationFailed):
		response.RespondJSON(c, "error", http.StatusPaymentRequired, err.Error(), nil, nil)
	case errors.Is(err, events.ErrCapacityExceeded),
		errors.Is(err, events.ErrEventNotBookable),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTransition):
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	default:
		response.RespondJSON(c, "error", http.StatusInternalServerError, "internal server error", nil, nil)
	}
}
