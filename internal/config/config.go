package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	DatabasePath string `env:"DATABASE_PATH" envDefault:"orders.db"`
	JWTSecret    string `env:"JWT_SECRET"`

	VietQR  VietQR  `envPrefix:"VIETQR_"`
	Webhook Webhook `envPrefix:"WEBHOOK_"`
	Payment Payment `envPrefix:"PAYMENT_"`
}

type VietQR struct {
	BaseApiURL     string        `env:"BASE_API_URL" envDefault:"https://api.vietqr.io"`
	ClientID       string        `env:"CLIENT_ID"`
	APIKey         string        `env:"API_KEY"`
	AccountNo      string        `env:"ACCOUNT_NO"`
	AccountName    string        `env:"ACCOUNT_NAME"`
	AcqID          string        `env:"ACQ_ID"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
}

type Webhook struct {
	Secret      string        `env:"SECRET"`
	DedupWindow time.Duration `env:"DEDUP_WINDOW" envDefault:"15m"`
}

type Payment struct {
	// GracePeriod bounds how long an order may sit in awaiting_payment before
	// the sweeper expires it. Zero disables the in-process sweep (an external
	// reconciliation job may drive expiry instead).
	GracePeriod     time.Duration `env:"GRACE_PERIOD" envDefault:"0"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	AmountTolerance int64         `env:"AMOUNT_TOLERANCE" envDefault:"0"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
