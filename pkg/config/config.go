package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/spf13/viper"
)

type Config struct {
	Params      pagerank.Params
	Host        string
	GRPCPort    int
	HTTPPort    int
	RabbitHost  string
	RabbitUser  string
	RabbitPass  string
	WorkQueue   string
	ResultQueue string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Secure    bool
	SQLDriver   string
	SQLDSN      string
	DynamoTable string
	AWSRegion   string
	ComputeLog  bool
	ServerLog   bool
}

// Viper keys; the environment variable is the upper-cased key
const (
	KeyDampingFactor = "damping_factor"
	KeyMaxIterations = "max_iterations"
	KeyStopEpsilon   = "stop_epsilon"
	KeyHost          = "host"
	KeyGRPCPort      = "grpc_port"
	KeyHTTPPort      = "http_port"
	KeyRabbitHost    = "rabbit_host"
	KeyRabbitUser    = "rabbit_user"
	KeyRabbitPass    = "rabbit_password"
	KeyWorkQueue     = "work_queue"
	KeyResultQueue   = "result_queue"
	KeyS3Endpoint    = "s3_endpoint"
	KeyS3AccessKey   = "s3_access_key"
	KeyS3SecretKey   = "s3_secret_key"
	KeyS3Secure      = "s3_secure"
	KeySQLDriver     = "sql_driver"
	KeySQLDSN        = "sql_dsn"
	KeyDynamoTable   = "dynamo_table"
	KeyAWSRegion     = "aws_region"
	KeyComputeLog    = "compute_log"
	KeyServerLog     = "server_log"
)

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDampingFactor, pagerank.DefaultDampingFactor)
	v.SetDefault(KeyMaxIterations, pagerank.DefaultMaxIterations)
	v.SetDefault(KeyStopEpsilon, pagerank.DefaultStopEpsilon)
	v.SetDefault(KeyHost, "")
	v.SetDefault(KeyGRPCPort, 50051)
	v.SetDefault(KeyHTTPPort, 8080)
	v.SetDefault(KeyRabbitHost, "localhost")
	v.SetDefault(KeyRabbitUser, "guest")
	v.SetDefault(KeyRabbitPass, "guest")
	v.SetDefault(KeyWorkQueue, "work")
	v.SetDefault(KeyResultQueue, "result")
	v.SetDefault(KeyS3Secure, true)
	v.SetDefault(KeySQLDriver, "sqlite")
	v.SetDefault(KeyAWSRegion, "us-east-2")
	v.SetDefault(KeyComputeLog, false)
	v.SetDefault(KeyServerLog, false)
}

// Load reads the configuration from the environment (after loading
// .env if present, without overriding variables already set) and from
// whatever else is bound to v, such as command line flags.
func Load(v *viper.Viper) (Config, error) {
	_ = godotenv.Load()
	SetDefaults(v)
	v.AutomaticEnv()

	config := Config{
		Params: pagerank.Params{
			DampingFactor: v.GetFloat64(KeyDampingFactor),
			MaxIterations: v.GetInt(KeyMaxIterations),
			StopEpsilon:   v.GetFloat64(KeyStopEpsilon),
		},
		Host:        v.GetString(KeyHost),
		GRPCPort:    v.GetInt(KeyGRPCPort),
		HTTPPort:    v.GetInt(KeyHTTPPort),
		RabbitHost:  v.GetString(KeyRabbitHost),
		RabbitUser:  v.GetString(KeyRabbitUser),
		RabbitPass:  v.GetString(KeyRabbitPass),
		WorkQueue:   v.GetString(KeyWorkQueue),
		ResultQueue: v.GetString(KeyResultQueue),
		S3Endpoint:  v.GetString(KeyS3Endpoint),
		S3AccessKey: v.GetString(KeyS3AccessKey),
		S3SecretKey: v.GetString(KeyS3SecretKey),
		S3Secure:    v.GetBool(KeyS3Secure),
		SQLDriver:   v.GetString(KeySQLDriver),
		SQLDSN:      v.GetString(KeySQLDSN),
		DynamoTable: v.GetString(KeyDynamoTable),
		AWSRegion:   v.GetString(KeyAWSRegion),
		ComputeLog:  v.GetBool(KeyComputeLog),
		ServerLog:   v.GetBool(KeyServerLog),
	}
	if err := config.Params.Validate(); err != nil {
		return config, fmt.Errorf("configuration: %w", err)
	}
	return config, nil
}

// RabbitURL is the AMQP connection string
func (c Config) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:5672/", c.RabbitUser, c.RabbitPass, c.RabbitHost)
}
