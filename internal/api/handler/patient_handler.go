package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrecords/patient-portal/internal/api/metrics"
	"github.com/medrecords/patient-portal/internal/core/domain"
	"github.com/medrecords/patient-portal/internal/core/ports"
)

const (
	msgEmptyPatientData = "Invalid request: Updated Patient data is empty"
	msgMissingFields    = "Invalid request: Patient data missing required fields"
	msgMalformedData    = "Invalid request: Patient data is malformed"
	msgReadFailed       = "Database error, unable to retrieve data"
	msgSaveFailed       = "Database error, unable to save updated data"
	msgSaved            = "Your changes have been saved successfully."
)

// PatientHandler serves the record owned by the current session.
type PatientHandler struct {
	service ports.PatientService
	log     zerolog.Logger
}

func NewPatientHandler(service ports.PatientService, log zerolog.Logger) *PatientHandler {
	return &PatientHandler{service: service, log: log}
}

// Dashboard returns the session owner's record, or null when none exists.
//
// @Summary      Get patient record
// @Tags         patients
// @Produce      json
// @Success      200  {object}  domain.Patient
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/dashboard [post]
func (h *PatientHandler) Dashboard(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	patient, err := h.service.GetRecord(c.Request().Context(), email)
	if err != nil {
		metrics.RecordReadsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("email", email).Msg("read patient record")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: msgReadFailed})
	}

	if patient == nil {
		metrics.RecordReadsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.RecordReadsTotal.WithLabelValues("found").Inc()
	}
	return c.JSON(http.StatusOK, patient)
}

// Update replaces the record keyed by newData.id.
//
// @Summary      Update patient record
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        body  body      updateRequest  true  "Full replacement record under newData"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/update [patch]
func (h *PatientHandler) Update(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return h.reject(c, http.StatusBadRequest, msgEmptyPatientData)
	}

	raw := bytes.TrimSpace(req.NewData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return h.reject(c, http.StatusBadRequest, msgEmptyPatientData)
	}
	if raw[0] != '{' {
		return h.reject(c, http.StatusBadRequest, msgMissingFields)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || !hasRequiredFields(fields) {
		return h.reject(c, http.StatusBadRequest, msgMissingFields)
	}

	var payload patientPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return h.reject(c, http.StatusBadRequest, decodeErrorMessage(err))
	}
	if err := c.Validate(&payload); err != nil {
		return h.reject(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	err = h.service.UpdateRecord(c.Request().Context(), email, toDomainPatient(payload))
	switch {
	case err == nil:
		metrics.RecordUpdatesTotal.WithLabelValues("saved").Inc()
		return c.JSON(http.StatusOK, messageResponse{Message: msgSaved})
	case errors.Is(err, domain.ErrEmptyPatientData):
		return h.reject(c, http.StatusBadRequest, msgEmptyPatientData)
	case errors.Is(err, domain.ErrMissingRequiredFields):
		return h.reject(c, http.StatusBadRequest, msgMissingFields)
	}

	metrics.RecordUpdatesTotal.WithLabelValues("error").Inc()
	h.log.Error().Err(err).Str("email", email).Msg("save patient record")
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: msgSaveFailed})
}

// decodeErrorMessage names the offending field instead of echoing the
// decoder's Go type names.
func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "Invalid request: " + typeErr.Field + " has an invalid type"
	}
	return msgMalformedData
}

func (h *PatientHandler) reject(c echo.Context, status int, msg string) error {
	metrics.RecordUpdatesTotal.WithLabelValues("rejected").Inc()
	return c.JSON(status, messageResponse{Message: msg})
}
