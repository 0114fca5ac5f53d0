package adaptor

import (
	"encoding/json"
	"net/http"

	"screening-booking/internal/dto/request"
	"screening-booking/internal/usecase"
	"screening-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ResultHandler struct {
	service usecase.ResultService
	log     *zap.Logger
}

func NewResultHandler(service usecase.ResultService, log *zap.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		log:     log.With(zap.String("handler", "result")),
	}
}

// UploadResult handles PUT /api/admin/bookings/{id}/result (admin only)
func (h *ResultHandler) UploadResult(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.UploadResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.Upload(r.Context(), adminID.String(), bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "upload result")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// GetMyResult handles GET /api/bookings/{id}/result (participant)
func (h *ResultHandler) GetMyResult(w http.ResponseWriter, r *http.Request) {
	participantID, ok := utils.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	result, err := h.service.GetForBooking(r.Context(), participantID.String(), bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get result")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}
