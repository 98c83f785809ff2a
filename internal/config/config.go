package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Platform fee percent applied to every order payment. Single source
	// of truth for the fee split; nothing else hard-codes the rate.
	PlatformFeePercent int64 `env:"PLATFORM_FEE_PERCENT" envDefault:"5"`

	JWTSecret string `env:"JWT_SECRET"`

	// Reviewers allowed to approve subscription payment proofs.
	AdminUserIDs []string `env:"ADMIN_USER_IDS" envSeparator:","`

	Paystack    Paystack    `envPrefix:"PAYSTACK_"`
	Flutterwave Flutterwave `envPrefix:"FLUTTERWAVE_"`
	WhatsApp    WhatsApp    `envPrefix:"WHATSAPP_"`
}

type Paystack struct {
	BaseApiURL  string `env:"BASE_API_URL" envDefault:"https://api.paystack.co"`
	SecretKey   string `env:"SECRET_KEY"`
	CallbackURL string `env:"CALLBACK_URL"`
}

type Flutterwave struct {
	BaseApiURL  string `env:"BASE_API_URL" envDefault:"https://api.flutterwave.com/v3"`
	SecretKey   string `env:"SECRET_KEY"`
	WebhookHash string `env:"WEBHOOK_HASH"`
	RedirectURL string `env:"REDIRECT_URL"`
}

type WhatsApp struct {
	GatewayURL string `env:"GATEWAY_URL"`
	APIKey     string `env:"API_KEY"`
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
