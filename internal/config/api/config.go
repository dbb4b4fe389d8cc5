package api_config

import (
	"time"

	"github.com/NordCoder/loanbook/internal/obs"
	pg "github.com/NordCoder/loanbook/internal/repository/postgres"
	rds "github.com/NordCoder/loanbook/internal/repository/redis"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

const (
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
)

type Auth struct {
	AccessSecret     string        `mapstructure:"access_secret"`
	RefreshSecret    string        `mapstructure:"refresh_secret"`
	AccessTTL        time.Duration `mapstructure:"access_ttl"`
	RefreshTTL       time.Duration `mapstructure:"refresh_ttl"`
	TokenStore       string        `mapstructure:"token_store"`
	BcryptCost       int           `mapstructure:"bcrypt_cost"`
	UnifyLoginErrors bool          `mapstructure:"unify_login_errors"`
}

type Janitor struct {
	Enable   bool          `mapstructure:"enable"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	App     App        `mapstructure:"app"`
	Server  Server     `mapstructure:"server"`
	DB      pg.Config  `mapstructure:"db"`
	Redis   rds.Config `mapstructure:"redis"`
	OTEL    OTEL       `mapstructure:"otel"`
	Log     Log        `mapstructure:"log"`
	Auth    Auth       `mapstructure:"auth"`
	Janitor Janitor    `mapstructure:"janitor"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
