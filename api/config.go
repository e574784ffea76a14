package api

import (
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/votaseguro/election-ledger/logging"
)

const (
	DriverDynamo   = "dynamo"
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	defaultAdminPassword = "admin123"
)

type Config struct {
	ServerConfig
	StorageConfig
	AuthConfig
	ChainConfig
	ElectionConfig
}

type ServerConfig struct {
	Port int
	Mode string
}

type StorageConfig struct {
	Driver              string
	DSN                 string
	TableNameCandidates string
	TableNameUsers      string
	TableNameVotes      string
	TableNameElection   string
}

type AuthConfig struct {
	JWTSecret string
	// AdminPasswordHash wins over AdminPassword when both are set.
	AdminPasswordHash string
	AdminPassword     string
	TokenTTL          time.Duration
}

type ChainConfig struct {
	Enabled         bool
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	WaitReceipt     bool
	Timeout         time.Duration
}

type ElectionConfig struct {
	DefaultTokens  int
	AutoRegister   bool
	SeedCandidates bool
}

var settingsOnce sync.Once

func ReadConfig() *Config {
	var conf = &Config{
		ServerConfig: ServerConfig{
			Port: getIntOrDefault("server.port", 8080),
			Mode: getStringOrDefault("server.mode", "debug"),
		},
		StorageConfig: StorageConfig{
			Driver: getStringOrDefault("storage.driver", DriverSqlite),
		},
		AuthConfig: AuthConfig{
			JWTSecret:         getString("auth.jwtSecret"),
			AdminPasswordHash: getStringOrDefault("auth.adminPasswordHash", ""),
			AdminPassword:     getStringOrDefault("auth.adminPassword", defaultAdminPassword),
			TokenTTL:          getDurationOrDefault("auth.tokenTTL", 24*time.Hour),
		},
		ChainConfig: ChainConfig{
			Enabled: getBoolOrDefault("chain.enabled", false),
		},
		ElectionConfig: ElectionConfig{
			DefaultTokens:  getIntOrDefault("election.defaultTokens", 3),
			AutoRegister:   getBoolOrDefault("election.autoRegister", true),
			SeedCandidates: getBoolOrDefault("election.seedCandidates", true),
		},
	}

	// Backend specific settings are only required for the selected backend
	switch conf.Driver {
	case DriverDynamo:
		conf.TableNameCandidates = getString("storage.tableNameCandidates")
		conf.TableNameUsers = getString("storage.tableNameUsers")
		conf.TableNameVotes = getString("storage.tableNameVotes")
		conf.TableNameElection = getString("storage.tableNameElection")
	case DriverSqlite:
		conf.DSN = getStringOrDefault("storage.dsn", "file:votaseguro.db?_pragma=busy_timeout(5000)")
	case DriverPostgres:
		conf.DSN = getString("storage.dsn")
	default:
		logging.Log.Fatalf("unknown storage driver '%s'", conf.Driver)
	}

	if conf.ChainConfig.Enabled {
		conf.RPCURL = getString("chain.rpcURL")
		conf.ContractAddress = getString("chain.contractAddress")
		conf.PrivateKey = getString("chain.privateKey")
		conf.WaitReceipt = getBoolOrDefault("chain.waitReceipt", true)
		conf.Timeout = getDurationOrDefault("chain.timeout", 30*time.Second)
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getBoolOrDefault(name string, def bool) bool {
	if viper.IsSet(name) {
		v := viper.GetBool(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getDurationOrDefault(name string, def time.Duration) time.Duration {
	if viper.IsSet(name) {
		v := viper.GetDuration(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
