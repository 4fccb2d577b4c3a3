// internal/api/http/campaign_handler.go
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"marketing-maas/internal/domain"
	"marketing-maas/internal/metrics"
	"marketing-maas/internal/usecase"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const apiVersion = "1.0.0"

// CampaignHandler serves the campaign and system HTTP API.
type CampaignHandler struct {
	service  *usecase.CampaignService
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewCampaignHandler creates a new CampaignHandler and initializes the validator.
func NewCampaignHandler(service *usecase.CampaignService, logger *slog.Logger) *CampaignHandler {
	validate := validator.New()

	// age_range is [min, max] with 0 <= min <= max.
	_ = validate.RegisterValidation("age_range", func(fl validator.FieldLevel) bool {
		r, ok := fl.Field().Interface().([]int)
		return ok && len(r) == 2 && r[0] >= 0 && r[0] <= r[1]
	})

	return &CampaignHandler{
		service:  service,
		logger:   logger.With("component", "campaign-handler"),
		validate: validate,
		tracer:   otel.Tracer("marketing-maas-api"),
	}
}

// A helper struct to capture the status code
type instrumentedResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *instrumentedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// RegisterRoutes registers the API routes on mux.
func (h *CampaignHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/", h.instrument(http.HandlerFunc(h.route)))
}

// instrument wraps next in a span and counts the request by route template.
func (h *CampaignHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routeTemplate(r.URL.Path)

		ctx, span := h.tracer.Start(r.Context(), "HTTP "+r.Method+" "+path, trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		))
		defer span.End()

		r = r.WithContext(ctx)

		iw := &instrumentedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(iw, r)

		metrics.HttpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(iw.statusCode)).Inc()

		span.SetAttributes(attribute.Int("http.status_code", iw.statusCode))
		if iw.statusCode >= 500 {
			span.SetStatus(codes.Error, "Server Error")
		}
	})
}

// routeTemplate maps a request path to a bounded metric label.
func routeTemplate(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	switch {
	case p == "/":
		return "/"
	case parts[0] == "campaigns" && len(parts) == 1:
		return "/campaigns"
	case parts[0] == "campaigns" && len(parts) == 2:
		return "/campaigns/{id}"
	case parts[0] == "campaigns" && len(parts) == 3 && parts[2] == "metrics":
		return "/campaigns/{id}/metrics"
	case p == "/system/status":
		return "/system/status"
	default:
		return "unmatched"
	}
}

// route is a general dispatcher for every API path.
func (h *CampaignHandler) route(w http.ResponseWriter, r *http.Request) {
	// e.g. /campaigns/summer-launch/metrics -> ["campaigns", "summer-launch", "metrics"]
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/":
		h.only(w, r, http.MethodGet, h.handleRoot)
		return
	case r.URL.Path == "/system/status":
		h.only(w, r, http.MethodGet, h.handleSystemStatus)
		return
	case pathParts[0] != "campaigns" || len(pathParts) > 3:
		http.NotFound(w, r)
		return
	}

	var campaignID, action string
	if len(pathParts) > 1 {
		campaignID = pathParts[1]
	}
	if len(pathParts) > 2 {
		action = pathParts[2]
	}

	switch {
	case campaignID == "":
		switch r.Method {
		case http.MethodGet:
			h.handleListCampaigns(w, r)
		case http.MethodPost:
			h.handleCreateCampaign(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case action == "":
		switch r.Method {
		case http.MethodGet:
			h.handleGetCampaign(w, r, campaignID)
		case http.MethodPatch:
			h.handleUpdateCampaign(w, r, campaignID)
		case http.MethodDelete:
			h.handleDeleteCampaign(w, r, campaignID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case action == "metrics":
		h.only(w, r, http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
			h.handleCampaignMetrics(w, r, campaignID)
		})
	default:
		http.NotFound(w, r)
	}
}

func (h *CampaignHandler) only(w http.ResponseWriter, r *http.Request, method string, fn http.HandlerFunc) {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r)
}

func (h *CampaignHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Marketing MaaS API", "version": apiVersion})
}

func (h *CampaignHandler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.CreateCampaign")
	defer span.End()

	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "Failed to decode request body")
		span.RecordError(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.validRequest(w, span, req) {
		return
	}

	campaign := req.ToDomainCampaign()
	span.SetAttributes(attribute.String("campaign.id", campaign.ID))

	if err := h.service.Create(ctx, campaign); err != nil {
		span.SetStatus(codes.Error, "Failed to create campaign in service")
		span.RecordError(err)
		h.writeServiceError(w, "error creating campaign", campaign.ID, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{
		Message:    fmt.Sprintf("Campaign %s created successfully", campaign.ID),
		CampaignID: campaign.ID,
	})
}

func (h *CampaignHandler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.ListCampaigns")
	defer span.End()

	campaigns, err := h.service.List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to list campaigns from service")
		span.RecordError(err)
		h.logger.Error("error listing campaigns", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if campaigns == nil {
		campaigns = []*domain.Campaign{}
	}
	writeJSON(w, http.StatusOK, CampaignListResponse{Campaigns: campaigns})
}

func (h *CampaignHandler) handleGetCampaign(w http.ResponseWriter, r *http.Request, id string) {
	ctx, span := h.tracer.Start(r.Context(), "handler.GetCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	campaign, err := h.service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to get campaign from service")
		span.RecordError(err)
		h.writeServiceError(w, "error getting campaign", id, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request, id string) {
	ctx, span := h.tracer.Start(r.Context(), "handler.UpdateCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	var req UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "Failed to decode request body")
		span.RecordError(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.validRequest(w, span, req) {
		return
	}

	if _, err := h.service.Update(ctx, id, req.ToDomainUpdate()); err != nil {
		span.SetStatus(codes.Error, "Failed to update campaign in service")
		span.RecordError(err)
		h.writeServiceError(w, "error updating campaign", id, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message:    fmt.Sprintf("Campaign %s updated successfully", id),
		CampaignID: id,
	})
}

func (h *CampaignHandler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request, id string) {
	ctx, span := h.tracer.Start(r.Context(), "handler.DeleteCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	if err := h.service.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, "Failed to delete campaign in service")
		span.RecordError(err)
		h.writeServiceError(w, "error deleting campaign", id, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message:    fmt.Sprintf("Campaign %s deleted successfully", id),
		CampaignID: id,
	})
}

func (h *CampaignHandler) handleCampaignMetrics(w http.ResponseWriter, r *http.Request, id string) {
	ctx, span := h.tracer.Start(r.Context(), "handler.CampaignMetrics")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	m, err := h.service.Metrics(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to get campaign metrics")
		span.RecordError(err)
		h.writeServiceError(w, "error getting campaign metrics", id, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *CampaignHandler) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.SystemStatus(r.Context()))
}

// validRequest runs struct validation and writes the 400 response on failure.
func (h *CampaignHandler) validRequest(w http.ResponseWriter, span trace.Span, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}
	span.SetStatus(codes.Error, "Validation failed")
	span.RecordError(err)

	var validationErrors []string
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors,
				"Field '"+fe.Field()+"' failed on the '"+fe.Tag()+"' tag.",
			)
		}
	} else {
		validationErrors = append(validationErrors, err.Error())
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation failed",
		"details": validationErrors,
	})
	return false
}

// writeServiceError maps service errors onto status codes.
func (h *CampaignHandler) writeServiceError(w http.ResponseWriter, msg, id string, err error) {
	switch {
	case errors.Is(err, domain.ErrCampaignNotFound):
		h.logger.Warn(msg, "campaign_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrCampaignExists):
		h.logger.Warn(msg, "campaign_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidCampaign):
		h.logger.Warn(msg, "campaign_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(msg, "campaign_id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
