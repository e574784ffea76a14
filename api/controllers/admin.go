package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/votaseguro/election-ledger/api/models"
	"github.com/votaseguro/election-ledger/api/transport"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/ledger"
	"github.com/votaseguro/election-ledger/logging"
)

type AdminController struct {
	ledger *ledger.Ledger
	issuer *auth.Issuer
}

func NewAdminController(l *ledger.Ledger, issuer *auth.Issuer) *AdminController {
	return &AdminController{ledger: l, issuer: issuer}
}

func (c *AdminController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin", transport.AuthMiddleware(c.issuer, auth.RoleAdmin))

	group.GET("/users", c.listUsers)
	group.POST("/users", c.registerUser)
	group.PUT("/users/:wallet/tokens", c.assignTokens)
	group.PUT("/users/:wallet/active", c.setActive)
	group.POST("/election/toggle", c.toggleElection)
	group.POST("/election/schedule", c.scheduleClose)
	group.DELETE("/election/schedule", c.cancelSchedule)
	group.GET("/stats", c.stats)
	group.GET("/reconcile", c.reconcile)
	group.POST("/reset", c.reset)
}

// listUsers godoc
// @Summary List registered users
// @Tags admin
// @Security BearerToken
// @Produce json
// @Success 200 {array} models.UserResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/users [get]
func (c *AdminController) listUsers(g *gin.Context) {
	users, err := c.ledger.Users(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, models.TransformUserFromStorage(u))
	}
	logging.Log.Infof("ADMIN: listed %d users", len(responses))
	g.JSON(http.StatusOK, responses)
}

// registerUser godoc
// @Summary Register a user with a token allowance
// @Tags admin
// @Security BearerToken
// @Accept json
// @Produce json
// @Param request body models.UserRegisterRequest true "User"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Wallet already registered"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/users [post]
func (c *AdminController) registerUser(g *gin.Context) {
	var req models.UserRegisterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request format"})
		return
	}

	user, err := c.ledger.RegisterUser(g.Request.Context(), req.Name, req.Email, req.WalletAddress, req.Tokens)
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusCreated, models.TransformUserFromStorage(user))
}

// assignTokens godoc
// @Summary Set the token allowance of a user
// @Tags admin
// @Security BearerToken
// @Accept json
// @Produce json
// @Param wallet path string true "Wallet address"
// @Param request body models.AssignTokensRequest true "Tokens"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse "Negative or below tokens already used"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/users/{wallet}/tokens [put]
func (c *AdminController) assignTokens(g *gin.Context) {
	var req models.AssignTokensRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Tokens == nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "tokens is required"})
		return
	}

	user, err := c.ledger.AssignTokens(g.Request.Context(), g.Param("wallet"), *req.Tokens)
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// setActive godoc
// @Summary Activate or deactivate a user
// @Tags admin
// @Security BearerToken
// @Accept json
// @Produce json
// @Param wallet path string true "Wallet address"
// @Param request body models.SetActiveRequest true "Active flag"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/users/{wallet}/active [put]
func (c *AdminController) setActive(g *gin.Context) {
	var req models.SetActiveRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Active == nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "active is required"})
		return
	}

	user, err := c.ledger.SetUserActive(g.Request.Context(), g.Param("wallet"), *req.Active)
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	logging.Log.Infof("ADMIN: user %s active=%t", user.WalletAddress, user.Active)
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// toggleElection godoc
// @Summary Open or close the election
// @Tags admin
// @Security BearerToken
// @Produce json
// @Success 200 {object} ledger.ElectionStatus
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/election/toggle [post]
func (c *AdminController) toggleElection(g *gin.Context) {
	status, err := c.ledger.ToggleElection(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, status)
}

// scheduleClose godoc
// @Summary Schedule the election close
// @Tags admin
// @Security BearerToken
// @Accept json
// @Produce json
// @Param request body models.ScheduleRequest true "Closing time (RFC 3339)"
// @Success 200 {object} ledger.ElectionStatus
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/election/schedule [post]
func (c *AdminController) scheduleClose(g *gin.Context) {
	var req models.ScheduleRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.ClosesAt.IsZero() {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "closesAt is required"})
		return
	}

	status, err := c.ledger.ScheduleClose(g.Request.Context(), req.ClosesAt)
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, status)
}

// cancelSchedule godoc
// @Summary Cancel the scheduled close
// @Tags admin
// @Security BearerToken
// @Produce json
// @Success 200 {object} ledger.ElectionStatus
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/election/schedule [delete]
func (c *AdminController) cancelSchedule(g *gin.Context) {
	status, err := c.ledger.CancelSchedule(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, status)
}

// stats godoc
// @Summary Dashboard statistics
// @Tags admin
// @Security BearerToken
// @Produce json
// @Success 200 {object} ledger.Stats
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/stats [get]
func (c *AdminController) stats(g *gin.Context) {
	stats, err := c.ledger.Stats(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, stats)
}

// reconcile godoc
// @Summary Compare off-chain tallies with the contract
// @Tags admin
// @Security BearerToken
// @Produce json
// @Success 200 {object} ledger.Reconciliation
// @Failure 501 {object} models.ErrorResponse "On-chain voting disabled"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/reconcile [get]
func (c *AdminController) reconcile(g *gin.Context) {
	result, err := c.ledger.Reconcile(g.Request.Context())
	if err != nil {
		respondError(g, "CHAIN", err)
		return
	}
	if !result.Consistent {
		logging.Log.Warn("ADMIN: off-chain tallies differ from the contract")
	}
	g.JSON(http.StatusOK, result)
}

// reset godoc
// @Summary Delete every vote and restore all tokens
// @Tags admin
// @Security BearerToken
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/reset [post]
func (c *AdminController) reset(g *gin.Context) {
	if err := c.ledger.Reset(g.Request.Context()); err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, models.MessageResponse{Message: "All votes reset"})
}
