package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votaseguro/election-ledger/api/models"
	testutils "github.com/votaseguro/election-ledger/api/controllers/testing"
	"github.com/votaseguro/election-ledger/ledger"
)

func TestGetCandidates(t *testing.T) {
	env := setupTestEnv(t, nil)

	t.Run("Happy path - all seeded candidates", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/candidates", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var result []models.CandidateResponse
		require.NoError(t, testutils.DecodeBody(res, &result))
		assert.Len(t, result, 9)
		assert.Equal(t, "1", result[0].ID)
	})

	t.Run("Happy path - filtered by category", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/candidates?category=diputados", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var result []models.CandidateResponse
		require.NoError(t, testutils.DecodeBody(res, &result))
		require.Len(t, result, 3)
		for _, c := range result {
			assert.Equal(t, "diputados", c.Category)
		}
	})

	t.Run("Unhappy path - invalid category", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/candidates?category=alcaldia", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - unknown id", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/candidates/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestAdminCandidates(t *testing.T) {
	env := setupTestEnv(t, nil)
	headers := testutils.Bearer(env.adminToken(t))

	var created models.CandidateResponse

	t.Run("Happy path - create", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/candidates",
			models.CandidateCreateRequest{Name: "Sofía Herrera", Party: "Partido Verde", Category: "senatorial"}, headers)
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
		require.NoError(t, testutils.DecodeBody(res, &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, int64(0), created.Votes)
		assert.NotEmpty(t, created.Image)
	})

	t.Run("Unhappy path - missing party", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/candidates",
			models.CandidateCreateRequest{Name: "Sin Partido", Category: "senatorial"}, headers)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Happy path - update keeps the tally", func(t *testing.T) {
		voter := env.voterToken(t, testWallet)
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: created.ID, Category: "senatorial"}, testutils.Bearer(voter))
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

		res = testutils.PerformRequest(env.router, http.MethodPut, "/api/admin/candidates/"+created.ID,
			models.CandidateUpdateRequest{Party: "Partido Verde Unido"}, headers)
		require.Equal(t, http.StatusOK, res.Code)

		var updated models.CandidateResponse
		require.NoError(t, testutils.DecodeBody(res, &updated))
		assert.Equal(t, "Partido Verde Unido", updated.Party)
		assert.Equal(t, "Sofía Herrera", updated.Name)
		assert.Equal(t, int64(1), updated.Votes)
	})

	t.Run("Happy path - delete", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/admin/candidates/"+created.ID, nil, headers)
		require.Equal(t, http.StatusNoContent, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodDelete, "/api/admin/candidates/"+created.ID, nil, headers)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestLeaderboard(t *testing.T) {
	env := setupTestEnv(t, nil)
	voter := env.voterToken(t, testWallet)

	res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
		models.CastVoteRequest{CandidateID: "3", Category: "presidencial"}, testutils.Bearer(voter))
	require.Equal(t, http.StatusCreated, res.Code)

	res = testutils.PerformRequest(env.router, http.MethodGet, "/api/leaderboard", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var board ledger.Leaderboard
	require.NoError(t, testutils.DecodeBody(res, &board))
	assert.Equal(t, int64(1), board.TotalVotes)
	require.Len(t, board.Categories, 3)
	assert.Equal(t, "3", board.Categories[0].Candidates[0].ID)
	assert.Equal(t, float64(100), board.Categories[0].Candidates[0].Percentage)
}
