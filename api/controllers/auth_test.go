package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votaseguro/election-ledger/api/models"
	testutils "github.com/votaseguro/election-ledger/api/controllers/testing"
	"github.com/votaseguro/election-ledger/auth"
)

func TestAdminLogin(t *testing.T) {
	env := setupTestEnv(t, nil)

	t.Run("Happy path - admin token", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/admin",
			models.AdminLoginRequest{Password: testAdminPassword}, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var login models.LoginResponse
		require.NoError(t, testutils.DecodeBody(res, &login))
		assert.Equal(t, auth.RoleAdmin, login.Role)
		assert.NotEmpty(t, login.Token)
		assert.Nil(t, login.User)
	})

	t.Run("Unhappy path - wrong password", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/admin",
			models.AdminLoginRequest{Password: "nope"}, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Unhappy path - missing password", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/admin", models.AdminLoginRequest{}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestVoterLogin(t *testing.T) {
	env := setupTestEnv(t, nil)

	t.Run("Happy path - unknown wallet is registered", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/voter",
			models.VoterLoginRequest{Name: "Ana", Email: "ana@example.com", WalletAddress: testWallet}, nil)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		var login models.LoginResponse
		require.NoError(t, testutils.DecodeBody(res, &login))
		assert.Equal(t, auth.RoleVoter, login.Role)
		require.NotNil(t, login.User)
		assert.Equal(t, 3, login.User.TokensRemaining)
	})

	t.Run("Unhappy path - invalid wallet", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/voter",
			models.VoterLoginRequest{Name: "Ana", Email: "ana@example.com", WalletAddress: "0xTU_DIRECCION"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - deactivated user", func(t *testing.T) {
		admin := env.adminToken(t)
		active := false
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/admin/users/"+testWallet+"/active",
			models.SetActiveRequest{Active: &active}, testutils.Bearer(admin))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		res = testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/voter",
			models.VoterLoginRequest{Name: "Ana", Email: "ana@example.com", WalletAddress: testWallet}, nil)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}

func TestLogoutAndRoles(t *testing.T) {
	env := setupTestEnv(t, nil)

	t.Run("Unhappy path - no token", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/voter/profile", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Unhappy path - voter on admin route", func(t *testing.T) {
		voter := env.voterToken(t, testWallet)
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/stats", nil, testutils.Bearer(voter))
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("Happy path - logout revokes the token", func(t *testing.T) {
		voter := env.voterToken(t, testWallet)
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/voter/profile", nil, testutils.Bearer(voter))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodPost, "/api/auth/logout", nil, testutils.Bearer(voter))
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/voter/profile", nil, testutils.Bearer(voter))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}
