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

type AuthController struct {
	ledger *ledger.Ledger
	issuer *auth.Issuer
}

func NewAuthController(l *ledger.Ledger, issuer *auth.Issuer) *AuthController {
	return &AuthController{ledger: l, issuer: issuer}
}

func (c *AuthController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")

	group.POST("/admin", c.adminLogin)
	group.POST("/voter", c.voterLogin)
	group.POST("/logout", transport.AuthMiddleware(c.issuer), c.logout)
}

// adminLogin godoc
// @Summary Log in as administrator
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/admin [post]
func (c *AuthController) adminLogin(g *gin.Context) {
	var req models.AdminLoginRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Password == "" {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "password is required"})
		return
	}

	if err := c.issuer.CheckAdminPassword(req.Password); err != nil {
		respondError(g, "AUTH", err)
		return
	}

	token, expires, err := c.issuer.Issue(auth.RoleAdmin, auth.AdminSubject)
	if err != nil {
		respondError(g, "AUTH", err)
		return
	}

	logging.Log.Info("AUTH: admin logged in")
	g.JSON(http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expires, Role: auth.RoleAdmin})
}

// voterLogin godoc
// @Summary Log in as voter
// @Description Registers the wallet with the default allowance when auto registration is enabled
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.VoterLoginRequest true "Voter identity"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse "Wallet not registered"
// @Failure 403 {object} models.ErrorResponse "User deactivated"
// @Router /api/auth/voter [post]
func (c *AuthController) voterLogin(g *gin.Context) {
	var req models.VoterLoginRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request format"})
		return
	}

	user, err := c.ledger.Login(g.Request.Context(), ledger.VoterLogin{
		Name:          req.Name,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		respondError(g, "AUTH", err)
		return
	}

	token, expires, err := c.issuer.Issue(auth.RoleVoter, user.WalletAddress)
	if err != nil {
		respondError(g, "AUTH", err)
		return
	}

	logging.Log.Infof("AUTH: voter %s logged in", user.WalletAddress)
	r := models.TransformUserFromStorage(user)
	g.JSON(http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expires, Role: auth.RoleVoter, User: &r})
}

// logout godoc
// @Summary Revoke the current session token
// @Tags auth
// @Security BearerToken
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/logout [post]
func (c *AuthController) logout(g *gin.Context) {
	claims := transport.ClaimsFrom(g)
	c.issuer.Revoke(claims)
	logging.Log.Infof("AUTH: %s %s logged out", claims.Role, claims.Subject)
	g.JSON(http.StatusOK, models.MessageResponse{Message: "logged out"})
}
