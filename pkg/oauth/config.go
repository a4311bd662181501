package oauth

// Config holds the client credentials shared by every provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// TwitterConfig holds Twitter (X) OAuth configuration.
type TwitterConfig struct {
	ClientID     string   `env:"TWITTER_OAUTH_CLIENT_ID,required,notEmpty"`
	ClientSecret string   `env:"TWITTER_OAUTH_CLIENT_SECRET,required,notEmpty"`
	RedirectURL  string   `env:"TWITTER_OAUTH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"TWITTER_OAUTH_SCOPES" envSeparator:","`
}

// ClientConfig converts the Twitter configuration into a generic client Config.
func (c TwitterConfig) ClientConfig() Config {
	return Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
	}
}
