package controllers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votaseguro/election-ledger/api/models"
	testutils "github.com/votaseguro/election-ledger/api/controllers/testing"
	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/chain/mocks"
	"github.com/votaseguro/election-ledger/ledger"
)

func TestCastVote(t *testing.T) {
	env := setupTestEnv(t, nil)
	headers := testutils.Bearer(env.voterToken(t, testWallet))

	t.Run("Happy path - vote is recorded", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: "1", Category: "presidencial"}, headers)
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

		var vote models.VoteResponse
		require.NoError(t, testutils.DecodeBody(res, &vote))
		assert.Equal(t, "Ana García", vote.CandidateName)
		assert.Equal(t, "Partido Democrático", vote.CandidateParty)
		assert.False(t, vote.OnChain)
		assert.Len(t, vote.TransactionHash, 66)
	})

	t.Run("Unhappy path - second vote in the category", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: "2", Category: "presidencial"}, headers)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("Unhappy path - candidate of another category", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: "1", Category: "senatorial"}, headers)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - unknown candidate", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: "404", Category: "senatorial"}, headers)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("Unhappy path - missing fields", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: "4"}, headers)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Happy path - profile and history", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/voter/profile", nil, headers)
		require.Equal(t, http.StatusOK, res.Code)

		var profile ledger.VoterProfile
		require.NoError(t, testutils.DecodeBody(res, &profile))
		assert.Equal(t, 2, profile.TokensRemaining)
		assert.Equal(t, []string{"presidencial"}, profile.VotedCategories)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/voter/votes", nil, headers)
		require.Equal(t, http.StatusOK, res.Code)

		var history []models.VoteResponse
		require.NoError(t, testutils.DecodeBody(res, &history))
		require.Len(t, history, 1)
		assert.Equal(t, "1", history[0].CandidateID)
	})

	t.Run("Unhappy path - election closed", func(t *testing.T) {
		admin := testutils.Bearer(env.adminToken(t))
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/election/toggle", nil, admin)
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
			models.CastVoteRequest{CandidateID: "4", Category: "senatorial"}, headers)
		assert.Equal(t, http.StatusConflict, res.Code)

		res = testutils.PerformRequest(env.router, http.MethodGet, "/api/election", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var status ledger.ElectionStatus
		require.NoError(t, testutils.DecodeBody(res, &status))
		assert.False(t, status.Open)
	})
}

func TestCastVoteNoTokens(t *testing.T) {
	env := setupTestEnv(t, nil)
	headers := testutils.Bearer(env.voterToken(t, testWallet))
	admin := testutils.Bearer(env.adminToken(t))

	zero := 0
	res := testutils.PerformRequest(env.router, http.MethodPut, "/api/admin/users/"+testWallet+"/tokens",
		models.AssignTokensRequest{Tokens: &zero}, admin)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
		models.CastVoteRequest{CandidateID: "4", Category: "senatorial"}, headers)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestCastVoteOnChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Vote(gomock.Any(), "5").Return(chain.Receipt{TransactionHash: "0xabc", OnChain: true}, nil)
	client.EXPECT().Vote(gomock.Any(), "8").Return(chain.Receipt{}, errors.New("connection refused"))

	env := setupTestEnv(t, client)
	headers := testutils.Bearer(env.voterToken(t, testWallet))

	res := testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
		models.CastVoteRequest{CandidateID: "5", Category: "senatorial"}, headers)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var vote models.VoteResponse
	require.NoError(t, testutils.DecodeBody(res, &vote))
	assert.True(t, vote.OnChain)
	assert.Equal(t, "0xabc", vote.TransactionHash)

	res = testutils.PerformRequest(env.router, http.MethodPost, "/api/voter/vote",
		models.CastVoteRequest{CandidateID: "8", Category: "diputados"}, headers)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	require.NoError(t, testutils.DecodeBody(res, &vote))
	assert.False(t, vote.OnChain)
	assert.Len(t, vote.TransactionHash, 66)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestEnv(t, nil)
	headers := testutils.Bearer(env.voterToken(t, testWallet))

	t.Run("Happy path - change email only", func(t *testing.T) {
		email := "nuevo@example.com"
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/voter/profile",
			models.UpdateProfileRequest{Email: &email}, headers)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		var profile ledger.VoterProfile
		require.NoError(t, testutils.DecodeBody(res, &profile))
		assert.Equal(t, email, profile.Email)
		assert.Equal(t, "Usuario Demo", profile.Name)
	})

	t.Run("Unhappy path - blank name", func(t *testing.T) {
		blank := " "
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/voter/profile",
			models.UpdateProfileRequest{Name: &blank}, headers)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestScheduleClose(t *testing.T) {
	env := setupTestEnv(t, nil)
	admin := testutils.Bearer(env.adminToken(t))

	t.Run("Unhappy path - in the past", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/election/schedule",
			models.ScheduleRequest{ClosesAt: time.Now().Add(-time.Hour)}, admin)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Happy path - schedule and cancel", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/election/schedule",
			models.ScheduleRequest{ClosesAt: time.Now().Add(time.Hour)}, admin)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		var status ledger.ElectionStatus
		require.NoError(t, testutils.DecodeBody(res, &status))
		assert.True(t, status.Open)
		assert.NotNil(t, status.ClosesAt)

		res = testutils.PerformRequest(env.router, http.MethodDelete, "/api/admin/election/schedule", nil, admin)
		require.Equal(t, http.StatusOK, res.Code)
		status = ledger.ElectionStatus{}
		require.NoError(t, testutils.DecodeBody(res, &status))
		assert.Nil(t, status.ClosesAt)
	})
}
