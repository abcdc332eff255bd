package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	AuthSecret  string `env:"AUTH_JWT_SECRET"`

	Stripe     Stripe     `envPrefix:"STRIPE_"`
	Settlement Settlement `envPrefix:"SETTLEMENT_"`
}

type Stripe struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

// Settlement holds the platform-wide defaults applied to new orders. The
// rates are snapshotted onto each order at creation time; changing them
// later never affects already-created orders.
type Settlement struct {
	HoldDays         int    `env:"HOLD_DAYS" envDefault:"5"`
	TaxRate          string `env:"TAX_RATE" envDefault:"0.0725"`
	PlatformFeeRate  string `env:"PLATFORM_FEE_RATE" envDefault:"0.0325"`
	ProcessorFeeRate string `env:"PROCESSOR_FEE_RATE" envDefault:"0.029"`
	ReleaseInterval  string `env:"RELEASE_INTERVAL" envDefault:"24h"`
	Currency         string `env:"CURRENCY" envDefault:"usd"`
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
