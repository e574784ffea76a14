package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/votaseguro/election-ledger/api/models"
	"github.com/votaseguro/election-ledger/api/transport"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/ledger"
)

type CandidateController struct {
	ledger *ledger.Ledger
	issuer *auth.Issuer
}

func NewCandidateController(l *ledger.Ledger, issuer *auth.Issuer) *CandidateController {
	return &CandidateController{ledger: l, issuer: issuer}
}

func (c *CandidateController) RegisterRoutes(engine *gin.Engine) {
	public := engine.Group("/api")
	public.GET("/candidates", c.getAll)
	public.GET("/candidates/:id", c.get)
	public.GET("/leaderboard", c.leaderboard)

	admin := engine.Group("/api/admin/candidates", transport.AuthMiddleware(c.issuer, auth.RoleAdmin))
	admin.POST("", c.create)
	admin.PUT("/:id", c.update)
	admin.DELETE("/:id", c.delete)
}

// getAll godoc
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param category query string false "Only candidates of this category"
// @Success 200 {array} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/candidates [get]
func (c *CandidateController) getAll(g *gin.Context) {
	category := g.Query("category")
	if category != "" && !ledger.ValidCategory(category) {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid category"})
		return
	}

	candidates, err := c.ledger.Candidates(g.Request.Context(), category)
	if err != nil {
		respondError(g, "CANDIDATE", err)
		return
	}

	responses := make([]models.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		responses = append(responses, models.TransformCandidateFromStorage(candidate))
	}
	g.JSON(http.StatusOK, responses)
}

// get godoc
// @Summary Get a candidate by ID
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.CandidateResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/candidates/{id} [get]
func (c *CandidateController) get(g *gin.Context) {
	candidate, err := c.ledger.Candidate(g.Request.Context(), g.Param("id"))
	if err != nil {
		respondError(g, "CANDIDATE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformCandidateFromStorage(candidate))
}

// leaderboard godoc
// @Summary Live results per category
// @Tags candidates
// @Produce json
// @Success 200 {object} ledger.Leaderboard
// @Failure 500 {object} models.ErrorResponse
// @Router /api/leaderboard [get]
func (c *CandidateController) leaderboard(g *gin.Context) {
	board, err := c.ledger.Leaderboard(g.Request.Context())
	if err != nil {
		respondError(g, "CANDIDATE", err)
		return
	}
	g.JSON(http.StatusOK, board)
}

// create godoc
// @Summary Add a candidate
// @Tags admin
// @Security BearerToken
// @Accept json
// @Produce json
// @Param request body models.CandidateCreateRequest true "Candidate"
// @Success 201 {object} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates [post]
func (c *CandidateController) create(g *gin.Context) {
	var req models.CandidateCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request format"})
		return
	}

	candidate, err := c.ledger.AddCandidate(g.Request.Context(), ledger.CandidateInput{
		Name:     req.Name,
		Party:    req.Party,
		Category: req.Category,
		Image:    req.Image,
	})
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusCreated, models.TransformCandidateFromStorage(candidate))
}

// update godoc
// @Summary Update a candidate
// @Tags admin
// @Security BearerToken
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body models.CandidateUpdateRequest true "Fields to change"
// @Success 200 {object} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{id} [put]
func (c *CandidateController) update(g *gin.Context) {
	var req models.CandidateUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request format"})
		return
	}

	candidate, err := c.ledger.UpdateCandidate(g.Request.Context(), g.Param("id"), ledger.CandidateInput{
		Name:     req.Name,
		Party:    req.Party,
		Category: req.Category,
		Image:    req.Image,
	})
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformCandidateFromStorage(candidate))
}

// delete godoc
// @Summary Delete a candidate
// @Tags admin
// @Security BearerToken
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{id} [delete]
func (c *CandidateController) delete(g *gin.Context) {
	id := g.Param("id")
	if err := c.ledger.DeleteCandidate(g.Request.Context(), id); err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.Status(http.StatusNoContent)
}
