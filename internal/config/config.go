package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devSessionKey = "super-secret-default-key"

type Config struct {
	Env  string
	Port string

	Database struct {
		Dialect      string
		URL          string
		Driver       string
		MaxOpenConns int
		MaxIdleConns int
		Attempts     int
		Debug        bool
	}

	Session struct {
		Key    string
		Secure bool
		MaxAge int
	}

	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}

	AdminEmails  []string
	CORSOrigins  []string
	CacheTTL     time.Duration
	RollbarToken string
	Seed         bool
}

// GoogleEnabled reports whether all Google OAuth settings are present.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != "" && c.Google.RedirectURL != ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("env", "DEV")
	v.SetDefault("port", "8080")
	v.SetDefault("database.dialect", "postgres")
	v.SetDefault("database.url", "host=db user=postgres password=1234 dbname=testdb port=5432 sslmode=disable")
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.attempts", 5)
	v.SetDefault("database.debug", false)
	v.SetDefault("session.key", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.max_age", 86400*7)
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "")
	v.SetDefault("admin.emails", "")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("rollbar.token", "")
	v.SetDefault("seed", false)

	// DATABASE_URL -> database.url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional .env file and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not load .env: %v", err)
	}
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) *Config {
	c := &Config{
		Env:          strings.ToUpper(v.GetString("env")),
		Port:         v.GetString("port"),
		AdminEmails:  splitList(v.GetString("admin.emails")),
		CORSOrigins:  splitList(v.GetString("cors.origins")),
		CacheTTL:     v.GetDuration("cache.ttl"),
		RollbarToken: v.GetString("rollbar.token"),
		Seed:         v.GetBool("seed"),
	}

	c.Database.Dialect = v.GetString("database.dialect")
	c.Database.URL = v.GetString("database.url")
	c.Database.Driver = v.GetString("database.driver")
	c.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	c.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	c.Database.Attempts = v.GetInt("database.attempts")
	c.Database.Debug = v.GetBool("database.debug")

	c.Session.Key = v.GetString("session.key")
	c.Session.Secure = v.GetBool("session.secure")
	c.Session.MaxAge = v.GetInt("session.max_age")
	if c.Session.Key == "" {
		c.Session.Key = devSessionKey
		log.Println("config: SESSION_KEY is not set, using the development key")
	}

	c.Google.ClientID = v.GetString("google.client_id")
	c.Google.ClientSecret = v.GetString("google.client_secret")
	c.Google.RedirectURL = v.GetString("google.redirect_url")

	return c
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
