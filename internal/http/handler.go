package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"autuacao-mobile/internal/attachment"
	"autuacao-mobile/internal/form"
	"autuacao-mobile/internal/http/middleware"
	"autuacao-mobile/internal/model"
	"autuacao-mobile/internal/semob"
	"autuacao-mobile/internal/service"
)

type Handler struct {
	authService *service.AuthService
	autoService *service.AutoService
	formService *service.FormService
	log         zerolog.Logger
}

func NewHandler(
	authService *service.AuthService,
	autoService *service.AutoService,
	formService *service.FormService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		authService: authService,
		autoService: autoService,
		formService: formService,
		log:         log,
	}
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Senha    string `json:"senha" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	principal, token, err := h.authService.Login(c.Request.Context(), req.Username, req.Senha)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"token": token,
		"user":  principal,
	}))
}

func (h *Handler) updatePassword(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		NovaSenha string `json:"nova_senha" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), req.Username, req.NovaSenha); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "updated"}))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "logged out"}))
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	c.JSON(http.StatusOK, successResponse(principal))
}

func (h *Handler) listAutos(c *gin.Context) {
	autos, err := h.autoService.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": autos}))
}

func (h *Handler) getAuto(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid auto id"))
		return
	}

	auto, err := h.autoService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(auto))
}

func (h *Handler) deleteAuto(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid auto id"))
		return
	}

	if err := h.autoService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) pendingCount(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	count, err := h.autoService.PendingCount(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"quantidade": count}))
}

func (h *Handler) dispatchSEI(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	if err := h.autoService.DispatchSEI(c.Request.Context(), principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "dispatched"}))
}

func (h *Handler) openForm(c *gin.Context) {
	var req struct {
		AutoID string `json:"auto_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var auditID *uuid.UUID
	if strings.TrimSpace(req.AutoID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(req.AutoID))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid auto id"))
			return
		}
		auditID = &id
	}

	view, notices, err := h.formService.Open(c.Request.Context(), auditID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewResponse(view, notices))
}

func (h *Handler) getForm(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	view, err := h.formService.Get(sid)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, nil))
}

func (h *Handler) closeForm(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}
	h.formService.Close(sid)
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "closed"}))
}

func (h *Handler) setDate(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, notices, err := h.formService.SetDate(c.Request.Context(), sid, req.Date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, notices))
}

func (h *Handler) selectOperator(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req struct {
		ID int `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, notices, err := h.formService.SelectOperator(c.Request.Context(), sid, req.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, notices))
}

func (h *Handler) selectReference(kind service.Selection) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := h.sessionID(c)
		if !ok {
			return
		}

		var req struct {
			ID int `json:"id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}

		view, err := h.formService.Select(sid, kind, req.ID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, viewResponse(view, nil))
	}
}

func (h *Handler) patchFields(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	var patch form.FieldPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	view, err := h.formService.Patch(sid, patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, nil))
}

func (h *Handler) addAttachments(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	mpForm, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("multipart form expected"))
		return
	}

	var files []attachment.File
	for _, header := range mpForm.File["files"] {
		opened, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("unreadable file: "+header.Filename))
			return
		}
		content, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("unreadable file: "+header.Filename))
			return
		}
		files = append(files, attachment.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("no files provided"))
		return
	}

	view, notices, err := h.formService.AddAttachments(sid, files)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, notices))
}

func (h *Handler) removeAttachment(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	aid, err := uuid.Parse(strings.TrimSpace(c.Param("aid")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid attachment id"))
		return
	}

	view, err := h.formService.RemoveAttachment(sid, aid)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, nil))
}

func (h *Handler) saveForm(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	view, err := h.formService.Save(c.Request.Context(), sid)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, []model.Notice{model.InfoNotice("Auto salvo com sucesso!")}))
}

func (h *Handler) submitForm(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	sid, sidOK := h.sessionID(c)
	if !sidOK {
		return
	}

	view, err := h.formService.Submit(c.Request.Context(), sid, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse(view, []model.Notice{model.InfoNotice("Auto enviado com sucesso!")}))
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	sid, err := uuid.Parse(strings.TrimSpace(c.Param("sid")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid session id"))
		return uuid.Nil, false
	}
	return sid, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var apiErr *semob.APIError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   validation.Error(),
			"missing": validation.Missing,
		})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrBusy):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, semob.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, semob.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, semob.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, errorResponse(err.Error()))
	case errors.Is(err, semob.ErrUnreachable):
		c.JSON(http.StatusBadGateway, errorResponse(err.Error()))
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, errorResponse(apiErr.Error()))
	case errors.Is(err, service.ErrFuncionarioMissing):
		c.JSON(http.StatusBadGateway, errorResponse(err.Error()))
	case errors.Is(err, service.ErrStorage):
		h.log.Error().Err(err).Msg("storage error")
		c.JSON(http.StatusInternalServerError, errorResponse("falha ao gravar no armazenamento local"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

type responseEnvelope struct {
	Data    interface{}    `json:"data"`
	Notices []model.Notice `json:"notices,omitempty"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func viewResponse(view *service.FormView, notices []model.Notice) responseEnvelope {
	return responseEnvelope{Data: view, Notices: notices}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
