package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/votaseguro/election-ledger/api/models"
	"github.com/votaseguro/election-ledger/api/transport"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/ledger"
)

type VotingController struct {
	ledger *ledger.Ledger
	issuer *auth.Issuer
}

func NewVotingController(l *ledger.Ledger, issuer *auth.Issuer) *VotingController {
	return &VotingController{ledger: l, issuer: issuer}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/election", c.electionStatus)

	group := engine.Group("/api/voter", transport.AuthMiddleware(c.issuer, auth.RoleVoter))
	group.GET("/profile", c.profile)
	group.PUT("/profile", c.updateProfile)
	group.POST("/vote", c.castVote)
	group.GET("/votes", c.history)
}

// electionStatus godoc
// @Summary Current election state
// @Tags voting
// @Produce json
// @Success 200 {object} ledger.ElectionStatus
// @Failure 500 {object} models.ErrorResponse
// @Router /api/election [get]
func (c *VotingController) electionStatus(g *gin.Context) {
	status, err := c.ledger.ElectionStatus(g.Request.Context())
	if err != nil {
		respondError(g, "ELECTION", err)
		return
	}
	g.JSON(http.StatusOK, status)
}

// profile godoc
// @Summary Profile of the logged in voter
// @Tags voting
// @Security BearerToken
// @Produce json
// @Success 200 {object} ledger.VoterProfile
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/voter/profile [get]
func (c *VotingController) profile(g *gin.Context) {
	profile, err := c.ledger.Profile(g.Request.Context(), transport.ClaimsFrom(g).Subject)
	if err != nil {
		respondError(g, "USER", err)
		return
	}
	g.JSON(http.StatusOK, profile)
}

// updateProfile godoc
// @Summary Change name or email of the logged in voter
// @Tags voting
// @Security BearerToken
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} ledger.VoterProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/voter/profile [put]
func (c *VotingController) updateProfile(g *gin.Context) {
	var req models.UpdateProfileRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request format"})
		return
	}

	profile, err := c.ledger.UpdateProfile(g.Request.Context(), transport.ClaimsFrom(g).Subject, req.Name, req.Email)
	if err != nil {
		respondError(g, "USER", err)
		return
	}
	g.JSON(http.StatusOK, profile)
}

// castVote godoc
// @Summary Cast a vote
// @Description Spends one token on a candidate of the given category. One vote per category.
// @Tags voting
// @Security BearerToken
// @Accept json
// @Produce json
// @Param vote body models.CastVoteRequest true "Vote"
// @Success 201 {object} models.VoteResponse
// @Failure 400 {object} models.ErrorResponse "Invalid category or candidate of another category"
// @Failure 403 {object} models.ErrorResponse "User deactivated"
// @Failure 404 {object} models.ErrorResponse "Candidate not found"
// @Failure 409 {object} models.ErrorResponse "Already voted, no tokens left or election closed"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/voter/vote [post]
func (c *VotingController) castVote(g *gin.Context) {
	var req models.CastVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.CandidateID == "" || req.Category == "" {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "candidateId and category are required"})
		return
	}

	vote, err := c.ledger.CastVote(g.Request.Context(), transport.ClaimsFrom(g).Subject, req.CandidateID, req.Category)
	if err != nil {
		respondError(g, "VOTE", err)
		return
	}
	g.JSON(http.StatusCreated, models.TransformVoteFromStorage(vote))
}

// history godoc
// @Summary Votes cast by the logged in voter
// @Tags voting
// @Security BearerToken
// @Produce json
// @Success 200 {array} models.VoteResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/voter/votes [get]
func (c *VotingController) history(g *gin.Context) {
	votes, err := c.ledger.History(g.Request.Context(), transport.ClaimsFrom(g).Subject)
	if err != nil {
		respondError(g, "VOTE", err)
		return
	}

	responses := make([]models.VoteResponse, 0, len(votes))
	for _, v := range votes {
		responses = append(responses, models.TransformVoteFromStorage(v))
	}
	g.JSON(http.StatusOK, responses)
}
