package utils

import (
	"github.com/spf13/viper"
)

// Config carries the typed runtime settings the handlers depend on. Values
// come from the environment (godotenv loads .env during local development).
type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	Port       string `mapstructure:"PORT"`
	ShopDomain string `mapstructure:"SHOP_DOMAIN"`

	AudioGuideURL         string `mapstructure:"AUDIO_GUIDE_URL"`
	SurrenderValidatorURL string `mapstructure:"SURRENDER_VALIDATOR_URL"`
	CommitmentEvalURL     string `mapstructure:"COMMITMENT_EVAL_URL"`
	RemotionRenderURL     string `mapstructure:"REMOTION_RENDER_URL"`
	RenderAPIKey          string `mapstructure:"RENDER_API_KEY"`

	WatiURL    string `mapstructure:"WATI_URL"`
	WatiAPIKey string `mapstructure:"WATI_API_KEY"`

	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`

	AssetBaseURL  string `mapstructure:"ASSET_BASE_URL"`
	FilterDNSHost string `mapstructure:"FILTER_DNS_HOST"`

	DefaultUnlockMinutes int `mapstructure:"DEFAULT_UNLOCK_MINUTES"`
}

var Cfg Config

// LoadConfig reads the environment into the global Config. Every key has a
// sane default so the server can boot in development with just a .env file.
func LoadConfig() error {
	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SHOP_DOMAIN", "screentimejourney.myshopify.com")
	viper.SetDefault("FILTER_DNS_HOST", "family.cloudflare-dns.com")
	viper.SetDefault("DEFAULT_UNLOCK_MINUTES", 15)
	viper.SetDefault("ASSET_BASE_URL", "https://assets.screentimejourney.com")

	keys := []string{
		"APP_ENV", "PORT", "SHOP_DOMAIN",
		"AUDIO_GUIDE_URL", "SURRENDER_VALIDATOR_URL", "COMMITMENT_EVAL_URL",
		"REMOTION_RENDER_URL", "RENDER_API_KEY", "WATI_URL", "WATI_API_KEY",
		"STRIPE_SECRET_KEY", "ASSET_BASE_URL", "FILTER_DNS_HOST",
		"DEFAULT_UNLOCK_MINUTES",
	}
	for _, k := range keys {
		viper.BindEnv(k)
	}

	return viper.Unmarshal(&Cfg)
}
