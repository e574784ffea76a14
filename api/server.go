package api

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/votaseguro/election-ledger/api/controllers"
	"github.com/votaseguro/election-ledger/api/transport"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/ledger"
	"github.com/votaseguro/election-ledger/logging"
	"github.com/votaseguro/election-ledger/storage"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

type storages struct {
	candidates storage.CandidateStorage
	users      storage.UserStorage
	votes      storage.VoteStorage
	election   storage.ElectionStorage
	close      func() error
}

func (s *Server) Start() {
	ctx := context.Background()

	st, err := s.buildStorage(ctx)
	if err != nil {
		logging.Log.Errorf("failed to create storage: %v", err)
		panic("failed to create storage")
	}
	defer st.close()

	chainClient, closeChain, err := s.buildChain(ctx)
	if err != nil {
		logging.Log.Errorf("failed to connect to chain: %v", err)
		panic("failed to connect to chain")
	}
	defer closeChain()

	issuer, err := s.buildIssuer()
	if err != nil {
		logging.Log.Errorf("failed to create token issuer: %v", err)
		panic("failed to create token issuer")
	}

	l := ledger.New(st.candidates, st.users, st.votes, st.election, chainClient, ledger.Config{
		DefaultTokens:  s.config.DefaultTokens,
		AutoRegister:   s.config.AutoRegister,
		SeedCandidates: s.config.SeedCandidates,
	})
	if err := l.Seed(ctx); err != nil {
		logging.Log.Errorf("failed to seed candidates: %v", err)
		panic("failed to seed candidates")
	}

	r := transport.NewRouter(s.config.Mode)

	//Register controllers
	controllers.NewAuthController(l, issuer).RegisterRoutes(r)
	controllers.NewCandidateController(l, issuer).RegisterRoutes(r)
	controllers.NewVotingController(l, issuer).RegisterRoutes(r)
	controllers.NewAdminController(l, issuer).RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

func (s *Server) buildStorage(ctx context.Context) (*storages, error) {
	if s.config.Driver == DriverDynamo {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		dynamoClient := dynamodb.NewFromConfig(cfg)

		return &storages{
			candidates: &storage.DynamoCandidateStorage{Client: dynamoClient, TableName: s.config.TableNameCandidates},
			users:      &storage.DynamoUserStorage{Client: dynamoClient, TableName: s.config.TableNameUsers},
			votes:      &storage.DynamoVoteStorage{Client: dynamoClient, TableName: s.config.TableNameVotes},
			election:   &storage.DynamoElectionStorage{Client: dynamoClient, TableName: s.config.TableNameElection},
			close:      func() error { return nil },
		}, nil
	}

	store, err := storage.OpenSQL(ctx, s.config.Driver, s.config.DSN)
	if err != nil {
		return nil, err
	}
	return &storages{
		candidates: &storage.SQLCandidateStorage{Store: store},
		users:      &storage.SQLUserStorage{Store: store},
		votes:      &storage.SQLVoteStorage{Store: store},
		election:   &storage.SQLElectionStorage{Store: store},
		close:      store.Close,
	}, nil
}

// buildChain returns the client and a func releasing its connection.
func (s *Server) buildChain(ctx context.Context) (chain.Client, func(), error) {
	if !s.config.ChainConfig.Enabled {
		logging.Log.Warn("CHAIN: on-chain voting disabled, votes get placeholder hashes")
		return chain.NewSimulated(), func() {}, nil
	}
	client, err := chain.NewEthClient(ctx, chain.EthConfig{
		RPCURL:          s.config.RPCURL,
		ContractAddress: s.config.ContractAddress,
		PrivateKey:      s.config.PrivateKey,
		WaitReceipt:     s.config.WaitReceipt,
		Timeout:         s.config.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

func (s *Server) buildIssuer() (*auth.Issuer, error) {
	hash := s.config.AdminPasswordHash
	if hash == "" {
		if s.config.AdminPassword == defaultAdminPassword {
			logging.Log.Warn("AUTH: using the default admin password")
		}
		var err error
		if hash, err = auth.HashPassword(s.config.AdminPassword); err != nil {
			return nil, err
		}
	}
	return auth.NewIssuer(s.config.JWTSecret, s.config.TokenTTL, hash)
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
