package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "slotbot.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SLACK_BOT_TOKEN", "SLACK_APP_TOKEN", "CALENDAR_ID", "GOOGLE_APPLICATION_CREDENTIALS"} {
		t.Setenv(key, "")
	}
}

func TestReadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
verbosity_level = 2

[slack]
bot_token = "xoxb-1"
app_token = "xapp-1"
mode = "direct"

[calendar]
provider = "caldav"
calendar_id = "https://dav.example/cal/interviews/"
duration_minutes = 45

[caldav]
server_url = "https://dav.example/"
username = "bot"
`)

	config, err := readConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), configDir)

	assert.Equal(t, 2, config.VerbosityLevel)
	assert.Equal(t, ModeDirect, config.Slack.Mode)
	assert.Equal(t, "/schedule", config.Slack.Command)
	assert.Equal(t, "caldav", config.Calendar.Provider)
	assert.Equal(t, 45, config.Calendar.DurationMinutes)
	assert.Equal(t, "Asia/Kolkata", config.Calendar.TimeZone)
	assert.Equal(t, "Interview", config.Calendar.Summary)
	assert.Equal(t, "https://dav.example/", config.CalDAV.ServerURL)
	assert.Equal(t, ".slotbot.db", config.Database)
}

func TestReadConfigFallsBackToHomeConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "slotbot")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.toml"), []byte(`database = "x.db"`), 0o600))

	config, err := readConfig(filepath.Join(t.TempDir(), "bot.toml"))
	require.NoError(t, err)
	assert.Equal(t, "x.db", config.Database)
	assert.Equal(t, dir, configDir)
}

func TestReadConfigRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, `verbosity_level = "loud`)
	_, err := readConfig(path)
	assert.ErrorContains(t, err, "error parsing")
}

func TestLoadConfigWithoutFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearConfigEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("SLACK_APP_TOKEN", "xapp-env")
	t.Setenv("CALENDAR_ID", "team@group.calendar.google.com")
	t.Cleanup(func() { verbosityLevel = 1 })

	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "xoxb-env", config.Slack.BotToken)
	assert.Equal(t, "xapp-env", config.Slack.AppToken)
	assert.Equal(t, "team@group.calendar.google.com", config.Calendar.CalendarID)
	assert.Equal(t, ModeInteractive, config.Slack.Mode)
	assert.Equal(t, 1, verbosityLevel)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Cleanup(func() { verbosityLevel = 1 })

	path := writeConfig(t, `
verbosity_level = 0
[slack]
bot_token = "xoxb-file"
`)
	config, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-env", config.Slack.BotToken)
	assert.Equal(t, 0, verbosityLevel)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := defaultConfig()
		c.Slack.BotToken = "xoxb-1"
		c.Slack.AppToken = "xapp-1"
		return c
	}
	require.NoError(t, valid().Validate())

	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"missing bot token": {func(c *Config) { c.Slack.BotToken = "" }, "slack bot token is required"},
		"wrong app token":   {func(c *Config) { c.Slack.AppToken = "xoxb-2" }, "must start with xapp-"},
		"unknown mode":      {func(c *Config) { c.Slack.Mode = "batch" }, `unsupported slack mode "batch"`},
		"unknown provider":  {func(c *Config) { c.Calendar.Provider = "outlook" }, "unsupported provider type: outlook"},
		"zero duration":     {func(c *Config) { c.Calendar.DurationMinutes = 0 }, "duration_minutes must be positive"},
		"bad timezone":      {func(c *Config) { c.Calendar.TimeZone = "Mars/Olympus" }, `invalid timezone "Mars/Olympus"`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			assert.ErrorContains(t, c.Validate(), tc.want)
		})
	}
}

func TestConfigLocation(t *testing.T) {
	loc, err := defaultConfig().Location()
	require.NoError(t, err)

	noon := time.Date(2026, 10, 19, 12, 0, 0, 0, loc)
	_, offset := noon.Zone()
	assert.Equal(t, 5*60*60+30*60, offset)
}

func TestNewSchedulerFromConfig(t *testing.T) {
	config := defaultConfig()
	config.Calendar.DurationMinutes = 45

	s, err := newSchedulerFromConfig(config, NewSessionStore(), &fakeMessenger{}, &fakeBooker{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, s.cfg.Duration)
	assert.Equal(t, "Asia/Kolkata", s.cfg.Location.String())

	config.Calendar.TimeZone = "Nowhere/Special"
	_, err = newSchedulerFromConfig(config, NewSessionStore(), &fakeMessenger{}, &fakeBooker{}, nil)
	assert.Error(t, err)
}

func TestCalendarFactoryRejectsIncompleteSettings(t *testing.T) {
	ctx := context.Background()

	config := defaultConfig()
	_, err := NewCalendarFactory(config, nil).CreateCalendarProvider(ctx)
	assert.ErrorContains(t, err, "needs service_account_file or client_id/client_secret")

	config.Google.ClientID = "id"
	_, err = NewCalendarFactory(config, nil).CreateCalendarProvider(ctx)
	assert.ErrorContains(t, err, "needs the token database")

	config.Google.ServiceAccountFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = NewCalendarFactory(config, nil).CreateCalendarProvider(ctx)
	assert.ErrorContains(t, err, "error reading service account file")

	config.Calendar.Provider = "caldav"
	_, err = NewCalendarFactory(config, nil).CreateCalendarProvider(ctx)
	assert.ErrorContains(t, err, "no CalDAV server_url configured")

	config.Calendar.Provider = "outlook"
	_, err = NewCalendarFactory(config, nil).CreateCalendarProvider(ctx)
	assert.ErrorContains(t, err, "unsupported provider type")
}
