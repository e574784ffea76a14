package api

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/logging"
)

func TestReadConfig(t *testing.T) {
	logging.Log = logrus.New()
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Run("Happy path - defaults", func(t *testing.T) {
		viper.Set("auth.jwtSecret", "secret")

		conf := ReadConfig()
		assert.Equal(t, 8080, conf.Port)
		assert.Equal(t, DriverSqlite, conf.Driver)
		assert.NotEmpty(t, conf.DSN)
		assert.Equal(t, defaultAdminPassword, conf.AdminPassword)
		assert.Equal(t, 24*time.Hour, conf.TokenTTL)
		assert.False(t, conf.ChainConfig.Enabled)
		assert.Equal(t, 3, conf.DefaultTokens)
		assert.True(t, conf.AutoRegister)
		assert.True(t, conf.SeedCandidates)
	})

	t.Run("Happy path - overrides", func(t *testing.T) {
		viper.Set("auth.jwtSecret", "secret")
		viper.Set("auth.tokenTTL", "2h")
		viper.Set("election.defaultTokens", 5)
		viper.Set("election.autoRegister", false)
		viper.Set("chain.enabled", true)
		viper.Set("chain.rpcURL", "http://localhost:8545")
		viper.Set("chain.contractAddress", "0x5FbDB2315678afecb367f032d93F642f64180aa3")
		viper.Set("chain.privateKey", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

		conf := ReadConfig()
		assert.Equal(t, 2*time.Hour, conf.TokenTTL)
		assert.Equal(t, 5, conf.DefaultTokens)
		assert.False(t, conf.AutoRegister)
		assert.True(t, conf.ChainConfig.Enabled)
		assert.True(t, conf.WaitReceipt)
		assert.Equal(t, 30*time.Second, conf.Timeout)
	})
}

func TestBuildIssuerAndChain(t *testing.T) {
	logging.Log = logrus.New()

	s := NewServer(&Config{
		AuthConfig: AuthConfig{JWTSecret: "secret", AdminPassword: "s3cret", TokenTTL: time.Hour},
	})
	issuer, err := s.buildIssuer()
	require.NoError(t, err)
	assert.NoError(t, issuer.CheckAdminPassword("s3cret"))
	assert.ErrorIs(t, issuer.CheckAdminPassword(defaultAdminPassword), auth.ErrInvalidCredentials)

	client, closeChain, err := s.buildChain(context.Background())
	require.NoError(t, err)
	require.NotNil(t, closeChain)
	closeChain()
	assert.False(t, client.Enabled())
	_, ok := client.(*chain.Simulated)
	assert.True(t, ok)

	enabled := NewServer(&Config{ChainConfig: ChainConfig{Enabled: true, RPCURL: "http://localhost:8545"}})
	client, closeChain, err = enabled.buildChain(context.Background())
	assert.Error(t, err, "A missing contract address is rejected before dialing")
	assert.Nil(t, client)
	assert.Nil(t, closeChain)
}

func TestBuildSQLStorage(t *testing.T) {
	logging.Log = logrus.New()

	s := NewServer(&Config{StorageConfig: StorageConfig{Driver: DriverSqlite, DSN: ":memory:"}})
	st, err := s.buildStorage(context.Background())
	require.NoError(t, err)
	defer st.close()

	all, err := st.candidates.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
