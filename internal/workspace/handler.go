package workspace

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"transparency-backend/internal/chat"
	"transparency-backend/internal/credentials"
	"transparency-backend/internal/documents"
	"transparency-backend/internal/exports"
	"transparency-backend/internal/llm"
	"transparency-backend/internal/pdfdoc"
	"transparency-backend/internal/rubric"
	"transparency-backend/internal/shared/server/middleware"
	"transparency-backend/internal/shared/server/respond"
)

const defaultUploadLimit = 50 << 20

// Handler exposes the workspace over HTTP.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultUploadLimit
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches workspace routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/state", h.state)
	rg.GET("/toasts", h.toasts)

	rg.POST("/documents", h.upload)
	rg.GET("/documents/current/pages/:page", h.renderPage)

	rg.POST("/analysis", h.startAnalysis)
	rg.GET("/analysis", h.result)

	rg.POST("/chat", h.sendChat)
	rg.GET("/chat", h.chatHistory)

	rg.PUT("/model", h.setModel)
	rg.PUT("/tab", h.setTab)
	rg.PUT("/settings", h.setSettings)
	rg.GET("/settings/credentials", h.credentialStatus)
	rg.PUT("/settings/credentials/:provider", h.saveCredential)
	rg.DELETE("/settings/credentials/:provider", h.clearCredential)

	rg.GET("/exports/:format", h.export)
	rg.GET("/protocol", h.protocol)
	rg.GET("/models", h.models)
}

func (h *Handler) state(c *gin.Context) {
	respond.OK(c, h.Svc.State(middleware.SessionIDFromContext(c)))
}

func (h *Handler) toasts(c *gin.Context) {
	respond.OK(c, gin.H{"toasts": h.Svc.Toasts(middleware.SessionIDFromContext(c))})
}

func (h *Handler) upload(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file is too large", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	c.Set("statusTransition", "idle->loading")
	doc, err := h.Svc.Upload(c.Request.Context(), sessionID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrUnsupportedType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_file_type", "Please upload a PDF file", nil)
		case errors.Is(err, documents.ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", err.Error(), gin.H{"maxBytes": h.MaxUploadBytes})
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "busy", "a document is being processed", nil)
		default:
			respond.Error(c, http.StatusUnprocessableEntity, "document_load_failed", err.Error(), nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusCreated, documents.ToResponse(doc))
}

func (h *Handler) renderPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "page must be a number", nil)
		return
	}
	scale := 1.5
	if raw := c.Query("scale"); raw != "" {
		scale, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "scale must be a number", nil)
			return
		}
	}

	png, err := h.Svc.RenderPage(c.Request.Context(), middleware.SessionIDFromContext(c), page, scale)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoDocument):
			respond.Error(c, http.StatusConflict, "no_document", "No document loaded", nil)
		case errors.Is(err, pdfdoc.ErrPageOutOfRange):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		case errors.Is(err, pdfdoc.ErrInvalidScale):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render page", nil)
		}
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) startAnalysis(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	if err := h.Svc.Analyze(c.Request.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "busy", "an analysis is already running", nil)
		case errors.Is(err, ErrNoDocument):
			respond.Error(c, http.StatusConflict, "no_document", "No document loaded", nil)
		case errors.Is(err, ErrMissingCredential):
			tag := llm.ProviderForModel(h.Svc.State(sessionID).Model)
			respond.Error(c, http.StatusPreconditionRequired, "credential_required",
				"Please enter your "+tag.Label()+" API Key first", gin.H{"provider": tag, "keyName": tag.KeyName()})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}
	c.Set("statusTransition", "idle->ocr")
	respond.JSON(c, http.StatusAccepted, h.Svc.State(sessionID))
}

func (h *Handler) result(c *gin.Context) {
	res, err := h.Svc.Result(middleware.SessionIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "no_result", "no analysis result", nil)
		return
	}
	respond.OK(c, res)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) sendChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	msg, err := h.Svc.Chat(c.Request.Context(), middleware.SessionIDFromContext(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			respond.Error(c, http.StatusBadRequest, "validation_error", "message is required", nil)
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "busy", "a reply is already pending", nil)
		case errors.Is(err, ErrNoDocument):
			respond.Error(c, http.StatusConflict, "no_document", "No document loaded", nil)
		case errors.Is(err, ErrMissingCredential):
			respond.Error(c, http.StatusPreconditionRequired, "credential_required", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}
	respond.OK(c, msg)
}

func (h *Handler) chatHistory(c *gin.Context) {
	respond.OK(c, gin.H{"messages": h.Svc.Messages(middleware.SessionIDFromContext(c))})
}

type modelRequest struct {
	Model string `json:"model"`
}

func (h *Handler) setModel(c *gin.Context) {
	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sessionID := middleware.SessionIDFromContext(c)
	if err := h.Svc.SetModel(sessionID, req.Model); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.OK(c, h.Svc.State(sessionID))
}

type tabRequest struct {
	Tab Tab `json:"tab"`
}

func (h *Handler) setTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sessionID := middleware.SessionIDFromContext(c)
	if err := h.Svc.SetTab(sessionID, req.Tab); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.OK(c, h.Svc.State(sessionID))
}

type settingsRequest struct {
	Open *bool `json:"open"`
}

func (h *Handler) setSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Open == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "open is required", nil)
		return
	}
	sessionID := middleware.SessionIDFromContext(c)
	h.Svc.SetSettingsOpen(sessionID, *req.Open)
	respond.OK(c, h.Svc.State(sessionID))
}

func (h *Handler) credentialStatus(c *gin.Context) {
	respond.OK(c, gin.H{"credentials": h.Svc.CredentialStatus()})
}

type credentialRequest struct {
	APIKey string `json:"apiKey"`
}

func (h *Handler) saveCredential(c *gin.Context) {
	tag, ok := h.providerParam(c)
	if !ok {
		return
	}
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := h.Svc.SaveCredential(c.Request.Context(), middleware.SessionIDFromContext(c), tag, req.APIKey); err != nil {
		h.credentialError(c, err)
		return
	}
	respond.OK(c, gin.H{"credentials": h.Svc.CredentialStatus()})
}

func (h *Handler) clearCredential(c *gin.Context) {
	tag, ok := h.providerParam(c)
	if !ok {
		return
	}
	if err := h.Svc.ClearCredential(c.Request.Context(), middleware.SessionIDFromContext(c), tag); err != nil {
		h.credentialError(c, err)
		return
	}
	respond.OK(c, gin.H{"credentials": h.Svc.CredentialStatus()})
}

func (h *Handler) providerParam(c *gin.Context) (llm.Tag, bool) {
	tag, err := llm.ParseTag(c.Param("provider"))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		return "", false
	}
	return tag, true
}

func (h *Handler) credentialError(c *gin.Context, err error) {
	if errors.Is(err, credentials.ErrInvalidSecret) {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update credential", nil)
}

func (h *Handler) export(c *gin.Context) {
	format := exports.Format(c.Param("format"))
	file, err := h.Svc.Export(middleware.SessionIDFromContext(c), format)
	if err != nil {
		switch {
		case errors.Is(err, exports.ErrNoResult):
			respond.Error(c, http.StatusNotFound, "no_result", "no analysis result to export", nil)
		case errors.Is(err, exports.ErrUnknownFormat):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "export failed", nil)
		}
		return
	}
	if format == exports.FormatSummary {
		respond.OK(c, gin.H{"text": string(file.Data)})
		return
	}
	respond.Attachment(c, file.Name, file.ContentType, file.Data)
}

type protocolResponse struct {
	rubric.Reference
	Text string `json:"text"`
}

func (h *Handler) protocol(c *gin.Context) {
	respond.OK(c, protocolResponse{Reference: rubric.Protocol(), Text: llm.ProtocolRules()})
}

func (h *Handler) models(c *gin.Context) {
	respond.OK(c, gin.H{"models": h.Svc.Models()})
}
