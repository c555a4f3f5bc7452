package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	BucketDocuments string
	BucketCovers    string
	UseSSL          bool
	Region          string
}

type SecurityConfig struct {
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	SignatureSecret  string
	MaxSessions      int
}

type PaystackConfig struct {
	SecretKey    string
	BaseURL      string
	PollInterval time.Duration
}

type PaymentsConfig struct {
	Provider            string
	MobileMoneyProvider string
	DefaultCountry      string
	GatewayTimeout      time.Duration
	Minimums            map[string]float64
	Rates               map[string]float64
	SweepAfter          time.Duration
}

type JobsConfig struct {
	SweepSchedule  time.Duration
	ClaimInterval  time.Duration
	SessionCleanup bool
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	TLS              TLSConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Paystack         PaystackConfig
	Payments         PaymentsConfig
	Jobs             JobsConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("INKPRESS")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "payments:reconcile")
	v.SetDefault("redis.group", "reconcilers")
	v.SetDefault("redis.consumer", "reconciler-1")

	v.SetDefault("storage.bucketdocuments", "inkpress-documents")
	v.SetDefault("storage.bucketcovers", "inkpress-covers")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "720h") // 30 days
	v.SetDefault("security.maxsessions", 10)

	v.SetDefault("paystack.baseurl", "https://api.paystack.co")
	v.SetDefault("paystack.pollinterval", "3s")

	v.SetDefault("payments.provider", "sandbox")
	v.SetDefault("payments.mobilemoneyprovider", "mpesa")
	v.SetDefault("payments.defaultcountry", "KE")
	v.SetDefault("payments.gatewaytimeout", "90s")
	v.SetDefault("payments.sweepafter", "15m")
	v.SetDefault("payments.minimums", map[string]float64{
		"USD": 1,
		"KES": 50,
		"NGN": 100,
		"GHS": 1,
	})
	v.SetDefault("payments.rates", map[string]float64{
		"USD_KES": 129.5,
		"USD_NGN": 1530,
		"USD_GHS": 15.6,
	})

	v.SetDefault("jobs.sweepschedule", "1h")
	v.SetDefault("jobs.claiminterval", "1m")
	v.SetDefault("jobs.sessioncleanup", true)
}
