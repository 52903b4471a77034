package app

import (
	"github.com/veritalabs/supplement-verifier/internal/platform/envutil"
)

type Config struct {
	Port    string
	Env     string
	LogMode string

	AdminAPIKey string

	DBDriver    string
	DatabaseURL string

	ChainMode           string
	ChainName           string
	ChainRPCURL         string
	ContractAddress     string
	ChainID             int64
	PublisherPrivateKey string

	LLMProvider string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string

	SchemaVersion string

	ServiceName     string
	ServiceVersion  string
	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelHeaders     string
	OtelSampleRatio float64
}

func LoadConfig() Config {
	return Config{
		Port:    envutil.String("PORT", "8080"),
		Env:     envutil.String("APP_ENV", "development"),
		LogMode: envutil.String("LOG_MODE", "dev"),

		AdminAPIKey: envutil.String("ADMIN_API_KEY", ""),

		DBDriver:    envutil.String("DB_DRIVER", "sqlite"),
		DatabaseURL: envutil.String("DATABASE_URL", ""),

		ChainMode:           envutil.String("CHAIN_MODE", "mock"),
		ChainName:           envutil.String("CHAIN_NAME", "polygon-amoy"),
		ChainRPCURL:         envutil.String("CHAIN_RPC_URL", ""),
		ContractAddress:     envutil.String("CONTRACT_ADDRESS", ""),
		ChainID:             envutil.Int64("CHAIN_ID", 80002),
		PublisherPrivateKey: envutil.String("PUBLISHER_PRIVATE_KEY", ""),

		LLMProvider: envutil.String("LLM_PROVIDER", "mock"),
		LLMBaseURL:  envutil.String("LLM_BASE_URL", ""),
		LLMAPIKey:   envutil.String("LLM_API_KEY", ""),
		LLMModel:    envutil.String("LLM_MODEL", ""),

		SchemaVersion: envutil.String("ATTESTATION_SCHEMA_VERSION", "1.0"),

		ServiceName:     envutil.String("SERVICE_NAME", "supplement-verifier"),
		ServiceVersion:  envutil.String("SERVICE_VERSION", ""),
		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OtelSampleRatio: envutil.Float64("OTEL_SAMPLER_RATIO", 0.1),
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
