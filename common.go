package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const defaultConfigFile = ".slotbot.toml"

type Config struct {
	VerbosityLevel int            `toml:"verbosity_level"`
	Database       string         `toml:"database"`
	Slack          SlackConfig    `toml:"slack"`
	Calendar       CalendarConfig `toml:"calendar"`
	Google         GoogleConfig   `toml:"google"`
	CalDAV         CalDAVConfig   `toml:"caldav"`
}

type SlackConfig struct {
	BotToken string `toml:"bot_token"`
	AppToken string `toml:"app_token"`
	Command  string `toml:"command"`
	Mode     string `toml:"mode"`
	Debug    bool   `toml:"debug"`
}

type CalendarConfig struct {
	Provider        string `toml:"provider"`
	CalendarID      string `toml:"calendar_id"`
	TimeZone        string `toml:"timezone"`
	DurationMinutes int    `toml:"duration_minutes"`
	Summary         string `toml:"summary"`
	Description     string `toml:"description"`
	SendUpdates     string `toml:"send_updates"`
}

type GoogleConfig struct {
	ServiceAccountFile string `toml:"service_account_file"`
	ClientID           string `toml:"client_id"`
	ClientSecret       string `toml:"client_secret"`
	AccountName        string `toml:"account_name"`
}

type CalDAVConfig struct {
	ServerURL string `toml:"server_url"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

var configDir string

func defaultConfig() *Config {
	return &Config{
		VerbosityLevel: 1,
		Database:       ".slotbot.db",
		Slack: SlackConfig{
			Command: "/schedule",
			Mode:    ModeInteractive,
		},
		Calendar: CalendarConfig{
			Provider:        "google",
			CalendarID:      "primary",
			TimeZone:        "Asia/Kolkata",
			DurationMinutes: 30,
			Summary:         "Interview",
			Description:     "Interview slot booked",
			SendUpdates:     "all",
		},
		Google: GoogleConfig{
			AccountName: "default",
		},
	}
}

func readConfig(filename string) (*Config, error) {
	// Try first the given path, then `$HOME/.config/slotbot/`
	configDir = ""
	data, err := os.ReadFile(filename)
	if err != nil {
		home := filepath.Join(os.Getenv("HOME"), ".config", "slotbot")
		data, err = os.ReadFile(filepath.Join(home, filepath.Base(filename)))
		if err != nil {
			return nil, err
		}
		configDir = home
	} else {
		configDir = filepath.Dir(filename)
	}

	config := defaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}

	return config, nil
}

// loadConfig reads the config file if there is one, then applies .env and
// environment overrides. A missing file is not an error.
func loadConfig(filename string) (*Config, error) {
	if filename == "" {
		filename = defaultConfigFile
	}
	config, err := readConfig(filename)
	if errors.Is(err, fs.ErrNotExist) {
		config, err = defaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		printVerbosely(1, "slotbot: warning: failed to load .env: %v\n", err)
	}
	applyEnv(config)

	verbosityLevel = config.VerbosityLevel
	return config, nil
}

func applyEnv(config *Config) {
	overrides := map[string]*string{
		"SLACK_BOT_TOKEN":                &config.Slack.BotToken,
		"SLACK_APP_TOKEN":                &config.Slack.AppToken,
		"CALENDAR_ID":                    &config.Calendar.CalendarID,
		"GOOGLE_APPLICATION_CREDENTIALS": &config.Google.ServiceAccountFile,
	}
	for key, field := range overrides {
		if value := os.Getenv(key); value != "" {
			*field = value
		}
	}
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Calendar.TimeZone, err)
	}
	return loc, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	var problems []string
	if c.Slack.BotToken == "" {
		problems = append(problems, "slack bot token is required (SLACK_BOT_TOKEN)")
	}
	if !strings.HasPrefix(c.Slack.AppToken, "xapp-") {
		problems = append(problems, "slack app token must start with xapp- (SLACK_APP_TOKEN)")
	}
	if c.Slack.Mode != ModeInteractive && c.Slack.Mode != ModeDirect {
		problems = append(problems, fmt.Sprintf("unsupported slack mode %q", c.Slack.Mode))
	}
	if err := c.validateCalendar(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateCalendar() error {
	switch c.Calendar.Provider {
	case "google", "caldav":
	default:
		return fmt.Errorf("unsupported provider type: %s", c.Calendar.Provider)
	}
	if c.Calendar.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive, got %d", c.Calendar.DurationMinutes)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func newOAuthConfig(config *Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.Google.ClientID,
		ClientSecret: config.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{calendar.CalendarScope},
	}
}

func openDB(filename string) (*sql.DB, error) {
	path := filename
	if configDir != "" && !filepath.IsAbs(filename) {
		path = filepath.Join(configDir, filename)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := dbInit(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(context.TODO(), authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func saveToken(db *sql.DB, accountName string, token *oauth2.Token) error {
	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return err
	}

	_, err = db.Exec("INSERT OR REPLACE INTO tokens (account_name, token) VALUES (?, ?)", accountName, tokenJSON)
	return err
}

func loadToken(db *sql.DB, accountName string) (*oauth2.Token, error) {
	var tokenJSON []byte
	err := db.QueryRow("SELECT token FROM tokens WHERE account_name = ?", accountName).Scan(&tokenJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no token found for account %s, run `slotbot auth` first", accountName)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving token from database: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("error unmarshaling token: %w", err)
	}
	return &token, nil
}

// getClient returns an OAuth client for the account, refreshing and
// re-saving the cached token when Google hands out a new one.
func getClient(ctx context.Context, config *oauth2.Config, db *sql.DB, accountName string) (*http.Client, error) {
	token, err := loadToken(db, accountName)
	if err != nil {
		return nil, err
	}

	newToken, err := config.TokenSource(ctx, token).Token()
	if err != nil {
		if strings.Contains(err.Error(), "Token has been expired or revoked") {
			return nil, fmt.Errorf("token expired or revoked for account %s, run `slotbot auth` again", accountName)
		}
		return nil, fmt.Errorf("error retrieving token from token source: %w", err)
	}

	if newToken.AccessToken != token.AccessToken {
		printVerbosely(2, "Token refreshed for account %s.\n", accountName)
		if err := saveToken(db, accountName, newToken); err != nil {
			return nil, fmt.Errorf("error saving refreshed token: %w", err)
		}
	}

	return config.Client(ctx, newToken), nil
}

var verbosityLevel = 1

func printVerbosely(verbosity int, format string, a ...interface{}) {
	// verbosityLevel is set in the config file
	// 0 - no output, other than critical errors
	// 1 - bookings and rejected commands
	// 2 - parsed slots and token refreshes
	// 3 - every chat delivery
	if verbosity <= verbosityLevel {
		fmt.Printf(format, a...)
	}
}
