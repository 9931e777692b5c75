package invitehttp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/romitgit/tc-project-service/internal/domain/invite"
	"github.com/romitgit/tc-project-service/internal/port/inbound"
	"github.com/romitgit/tc-project-service/internal/shared/response"
	apperrors "github.com/romitgit/tc-project-service/internal/utils/errors"
	"github.com/romitgit/tc-project-service/internal/utils/middleware"
)

// errorMappings maps invite domain errors to HTTP responses.
var errorMappings = []response.ErrorMapping{
	{Err: invite.ErrInvalidRequest, Status: http.StatusBadRequest, Code: "INVALID_REQUEST"},
	{Err: invite.ErrInvalidProjectID, Status: http.StatusBadRequest, Code: "INVALID_PROJECT_ID"},
	{Err: invite.ErrNoCandidates, Status: http.StatusBadRequest, Code: "NO_CANDIDATES"},
	{Err: invite.ErrInvalidRole, Status: http.StatusBadRequest, Code: "INVALID_ROLE"},
	{Err: invite.ErrInvalidUserID, Status: http.StatusBadRequest, Code: "INVALID_USER_ID"},
	{Err: invite.ErrInvalidEmail, Status: http.StatusBadRequest, Code: "INVALID_EMAIL"},
	{Err: invite.ErrTooManyEmails, Status: http.StatusBadRequest, Code: "TOO_MANY_EMAILS"},
	{Err: invite.ErrMissingCaller, Status: http.StatusUnauthorized, Code: "UNAUTHORIZED"},
	{Err: invite.ErrForbiddenRole, Status: http.StatusForbidden, Code: "FORBIDDEN"},
	{Err: invite.ErrSnapshotFailed, Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "failed to load project state"},
	{Err: invite.ErrRoleLookupFailed, Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "failed to look up user roles"},
	{Err: invite.ErrPersistFailed, Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "failed to create invites"},
}

// Handler handles project member invite HTTP requests.
type Handler struct {
	inviteDomain inbound.InviteDomain
}

// NewHandler creates a new invite handler.
func NewHandler(inviteDomain inbound.InviteDomain) *Handler {
	return &Handler{inviteDomain: inviteDomain}
}

// RegisterRoutes registers invite routes. Extra handlers run before
// invite creation only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, createMiddleware ...gin.HandlerFunc) {
	invites := r.Group("/projects/:projectId/invites")
	{
		create := append(append([]gin.HandlerFunc{}, createMiddleware...), h.CreateInvites)
		invites.POST("", create...)
		invites.GET("", h.ListInvites)
	}
}

// CreateInvites handles POST /projects/:projectId/invites.
//
// A request where some candidates were rejected answers 403 with both the
// created invites and the itemized failures.
func (h *Handler) CreateInvites(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req inbound.CreateInvitesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.BadRequest(err.Error()))
		return
	}

	out, err := h.inviteDomain.CreateInvites(c.Request.Context(), middleware.GetCaller(c), projectID, &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	if out.HasFailures() {
		c.JSON(http.StatusForbidden, out)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// ListInvites handles GET /projects/:projectId/invites.
func (h *Handler) ListInvites(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	out, err := h.inviteDomain.ListOpenInvites(c.Request.Context(), projectID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusOK, out)
}

func projectIDParam(c *gin.Context) (int64, bool) {
	projectID, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		response.Error(c, apperrors.BadRequest("invalid project id"))
		return 0, false
	}
	return projectID, true
}
