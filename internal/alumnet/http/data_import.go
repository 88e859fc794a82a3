package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/roster"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

// DefaultMaxUploadBytes caps a roster upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// ImportHandler serves roster uploads, templates and batch tracking.
type ImportHandler struct {
	ImportService  *service.ImportService
	MaxUploadBytes int64
}

func (h *ImportHandler) maxUpload() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// HandleUpload godoc
//
//	@Summary		Upload a roster
//	@Description	Validates a .csv or .xlsx roster, records an import batch and issues one invite per valid row.
//	@Description	File-level problems (format, missing columns, capacity) reject the upload before a batch exists.
//	@Tags			Data Import
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"Roster spreadsheet"
//	@Param			user_type		formData	string	true	"alumni or student"
//	@Param			institution_id	formData	string	false	"Target institution (super admins only)"
//	@Success		200				{object}	alumnetsdk.UploadResponse
//	@Failure		400				{object}	alumnetsdk.ErrorResponse	"Invalid file, missing columns, capacity exceeded or no valid rows"
//	@Failure		401				{object}	alumnetsdk.ErrorResponse
//	@Failure		403				{object}	alumnetsdk.ErrorResponse
//	@Failure		404				{object}	alumnetsdk.ErrorResponse
//	@Failure		413				{object}	alumnetsdk.ErrorResponse
//	@Failure		500				{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/data-import/upload [post].
func (h *ImportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	if err := r.ParseMultipartForm(h.maxUpload()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, alumnetsdk.ErrorCodeInvalidRequest,
				fmt.Sprintf("File exceeds the %d byte upload limit", h.maxUpload()))
			return
		}
		badRequest(w, "No file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "No file provided")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		badRequest(w, "No file selected")
		return
	}
	if _, err := domain.ParseUserType(r.FormValue("user_type")); err != nil {
		badRequest(w, "Invalid user type")
		return
	}
	if err := roster.CheckFormat(header.Filename); err != nil {
		badRequest(w, describe(err))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "File could not be read")
		return
	}

	res, err := h.ImportService.Upload(r.Context(), p, service.UploadRequest{
		InstitutionID: r.FormValue("institution_id"),
		UserType:      r.FormValue("user_type"),
		Filename:      header.Filename,
		Data:          data,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoValidRecords):
			httpx.WriteJSON(w, http.StatusBadRequest, alumnetsdk.ErrorResponse{
				Error:            alumnetsdk.ErrorCodeInvalidRequest,
				ErrorDescription: "No valid records found in the uploaded file",
				Errors:           rowErrors(res.Errors),
			})
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, alumnetsdk.ErrorCodeForbidden, "Invalid institution access")
		case errors.Is(err, roster.ErrEmptyFile):
			badRequest(w, "File is empty")
		case errors.Is(err, roster.ErrUnsupportedFormat),
			errors.Is(err, roster.ErrUnreadable),
			errors.Is(err, roster.ErrMissingColumns),
			errors.Is(err, service.ErrCapacityExceeded):
			badRequest(w, describe(err))
		default:
			writeServiceError(w, r, err, "Error processing file")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, uploadResponse(res,
		fmt.Sprintf("Processed %d records successfully. Invitation emails are being sent.", res.Summary.SuccessfulRecords)))
}

func uploadResponse(res service.UploadResult, message string) alumnetsdk.UploadResponse {
	return alumnetsdk.UploadResponse{
		BatchID: res.Batch.ID,
		Status:  string(res.Batch.Status),
		Summary: alumnetsdk.UploadSummary(res.Summary),
		Errors:  rowErrors(res.Errors),
		Message: message,
	}
}

// HandleTemplate godoc
//
//	@Summary		Download an import template
//	@Description	Returns a CSV with the expected header and one sample row.
//	@Tags			Data Import
//	@Produce		text/csv
//	@Param			user_type	path		string	true	"alumni or student"
//	@Success		200			{file}		file
//	@Failure		400			{object}	alumnetsdk.ErrorResponse
//	@Failure		401			{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/data-import/template/{user_type} [get].
func (h *ImportHandler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	ut, err := domain.ParseUserType(r.PathValue("user_type"))
	if err != nil {
		badRequest(w, "Invalid user type")
		return
	}
	body, err := roster.Template(ut)
	if err != nil {
		writeServiceError(w, r, err, "Failed to render template")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+roster.TemplateFilename(ut))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleStatus godoc
//
//	@Summary		Get import batch status
//	@Description	Returns a batch's counters, error log and invitation mail delivery counts.
//	@Tags			Data Import
//	@Produce		json
//	@Param			id	path		string	true	"Batch ID"
//	@Success		200	{object}	alumnetsdk.BatchStatusResponse
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/data-import/batch/{id} [get].
func (h *ImportHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	st, err := h.ImportService.Status(r.Context(), p, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Batch not found")
			return
		}
		writeServiceError(w, r, err, "Failed to load batch")
		return
	}

	resp := batchResponse(st.Batch)
	mail := alumnetsdk.MailStats(st.Mail)
	resp.Mail = &mail
	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.BatchStatusResponse{Batch: resp})
}

// HandleRetry godoc
//
//	@Summary		Retry an import batch
//	@Description	Resets a completed or failed batch and reprocesses its stored file. Rows whose email already has an active invite or an account fail again.
//	@Tags			Data Import
//	@Produce		json
//	@Param			id	path		string	true	"Batch ID"
//	@Success		200	{object}	alumnetsdk.UploadResponse
//	@Failure		400	{object}	alumnetsdk.ErrorResponse	"Batch cannot be retried"
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/data-import/batch/{id}/retry [post].
func (h *ImportHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	res, err := h.ImportService.Retry(r.Context(), p, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchNotFound):
			writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Batch not found")
		case errors.Is(err, service.ErrBatchNotRetryable):
			badRequest(w, "Batch cannot be retried")
		case errors.Is(err, roster.ErrEmptyFile),
			errors.Is(err, roster.ErrUnsupportedFormat),
			errors.Is(err, roster.ErrUnreadable),
			errors.Is(err, roster.ErrMissingColumns):
			badRequest(w, describe(err))
		default:
			writeServiceError(w, r, err, "Failed to retry batch")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, uploadResponse(res, "Batch processing restarted"))
}

// HandleList godoc
//
//	@Summary		List import batches
//	@Description	Lists an institution's batches, newest first. Institution admins always see their own institution.
//	@Tags			Data Import
//	@Produce		json
//	@Param			institution_id	query		string	false	"Institution (super admins only)"
//	@Param			limit			query		int		false	"Maximum number of batches"	default(50)
//	@Success		200				{object}	alumnetsdk.BatchListResponse
//	@Failure		400				{object}	alumnetsdk.ErrorResponse
//	@Failure		401				{object}	alumnetsdk.ErrorResponse
//	@Failure		403				{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/data-import/batches [get].
func (h *ImportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	limit, ok := parseLimit(r)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	batches, err := h.ImportService.ListBatches(r.Context(), p, r.URL.Query().Get("institution_id"), limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list batches")
		return
	}

	out := alumnetsdk.BatchListResponse{Batches: make([]alumnetsdk.BatchResponse, 0, len(batches))}
	for _, b := range batches {
		out.Batches = append(out.Batches, batchResponse(b))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// parseLimit reads ?limit=, defaulting to 50 and capping at 500.
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return min(n, maxListLimit), true
}
