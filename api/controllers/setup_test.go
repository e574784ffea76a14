package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/votaseguro/election-ledger/api/models"
	testutils "github.com/votaseguro/election-ledger/api/controllers/testing"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/ledger"
	"github.com/votaseguro/election-ledger/logging"
	"github.com/votaseguro/election-ledger/storage"
)

const (
	testAdminPassword = "admin123"
	testWallet        = "0x742d35Cc6634C0532925a3b8D4C0532925a3b8D4"
)

type testEnv struct {
	router *gin.Engine
	ledger *ledger.Ledger
	issuer *auth.Issuer
}

func setupTestEnv(t *testing.T, client chain.Client) *testEnv {
	t.Helper()
	logging.Log = logrus.New()

	store, err := storage.OpenSQL(context.Background(), storage.DriverSqlite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	if client == nil {
		client = chain.NewSimulated()
	}
	l := ledger.New(
		&storage.SQLCandidateStorage{Store: store},
		&storage.SQLUserStorage{Store: store},
		&storage.SQLVoteStorage{Store: store},
		&storage.SQLElectionStorage{Store: store},
		client,
		ledger.Config{DefaultTokens: 3, AutoRegister: true, SeedCandidates: true},
	)
	require.NoError(t, l.Seed(context.Background()))

	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)
	issuer, err := auth.NewIssuer("test-secret", time.Hour, hash)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAuthController(l, issuer).RegisterRoutes(r)
	NewCandidateController(l, issuer).RegisterRoutes(r)
	NewVotingController(l, issuer).RegisterRoutes(r)
	NewAdminController(l, issuer).RegisterRoutes(r)

	return &testEnv{router: r, ledger: l, issuer: issuer}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	res := testutils.PerformRequest(e.router, http.MethodPost, "/api/auth/admin",
		models.AdminLoginRequest{Password: testAdminPassword}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var login models.LoginResponse
	require.NoError(t, testutils.DecodeBody(res, &login))
	return login.Token
}

func (e *testEnv) voterToken(t *testing.T, wallet string) string {
	t.Helper()
	res := testutils.PerformRequest(e.router, http.MethodPost, "/api/auth/voter",
		models.VoterLoginRequest{Name: "Usuario Demo", Email: "demo@example.com", WalletAddress: wallet}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var login models.LoginResponse
	require.NoError(t, testutils.DecodeBody(res, &login))
	return login.Token
}
