package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	port string

	dataDir     string
	sourcesFile string
	dbPath      string

	location    *time.Location
	cronSpec    string
	daysAhead   int
	icalCalName string
	httpTimeout time.Duration

	eventbriteToken  string
	discordToken     string
	discordChannelID string
	mastodonURL      string
	mastodonToken    string
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "9090"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		dataDir: func() string {
			dataDir := os.Getenv("DATA_DIR")
			if dataDir == "" {
				dataDir = "./data"
			}
			slog.Debug("env", "DATA_DIR", dataDir)
			return dataDir
		}(),
		sourcesFile: func() string {
			sourcesFile := os.Getenv("SOURCES_FILE")
			if sourcesFile == "" {
				sourcesFile = "./sources.yaml"
			}
			slog.Debug("env", "SOURCES_FILE", sourcesFile)
			return sourcesFile
		}(),
		dbPath: func() string {
			dbPath := os.Getenv("DB_PATH")
			if dbPath == "" {
				dbPath = "./commcal.db"
			}
			slog.Debug("env", "DB_PATH", dbPath)
			return dbPath
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
		cronSpec: func() string {
			cronSpec := os.Getenv("CRON")
			if cronSpec == "" {
				cronSpec = "0 * * * *" // hourly
			}
			slog.Debug("env", "CRON", cronSpec)
			return cronSpec
		}(),
		daysAhead: func() int {
			daysAheadStr := os.Getenv("DAYS_AHEAD")
			if daysAheadStr == "" {
				daysAheadStr = "1"
			}
			daysAhead, err := strconv.Atoi(daysAheadStr)
			if err != nil {
				slog.Error("invalid DAYS_AHEAD", "value", daysAheadStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "DAYS_AHEAD", daysAhead)
			return daysAhead
		}(),
		icalCalName: func() string {
			icalCalName := os.Getenv("ICAL_CALNAME")
			if icalCalName == "" {
				icalCalName = "Community Calendar"
			}
			slog.Debug("env", "ICAL_CALNAME", icalCalName)
			return icalCalName
		}(),
		httpTimeout: func() time.Duration {
			httpTimeoutStr := os.Getenv("HTTP_TIMEOUT")
			if httpTimeoutStr == "" {
				httpTimeoutStr = "30s"
			}
			duration, err := time.ParseDuration(httpTimeoutStr)
			if err != nil {
				slog.Error("invalid HTTP_TIMEOUT", "value", httpTimeoutStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "HTTP_TIMEOUT", duration)
			return duration
		}(),

		eventbriteToken: func() string {
			eventbriteToken := os.Getenv("EVENTBRITE_TOKEN")
			if eventbriteToken == "" {
				slog.Warn("EVENTBRITE_TOKEN is not set, eventbrite sources will fail")
			}
			return eventbriteToken
		}(),
		discordToken: func() string {
			discordToken := os.Getenv("DISCORD_APP_TOKEN")
			if discordToken == "" {
				slog.Warn("DISCORD_APP_TOKEN is not set, discord announcements disabled")
			}
			return discordToken
		}(),
		discordChannelID: func() string {
			discordChannelID := os.Getenv("DISCORD_CHANNEL_ID")
			slog.Debug("env", "DISCORD_CHANNEL_ID", discordChannelID)
			return discordChannelID
		}(),
		mastodonURL: func() string {
			mastodonURL := os.Getenv("MASTODON_URL")
			if mastodonURL == "" {
				slog.Warn("MASTODON_URL is not set, mastodon announcements disabled")
			}
			slog.Debug("env", "MASTODON_URL", mastodonURL)
			return mastodonURL
		}(),
		mastodonToken: func() string {
			return os.Getenv("MASTODON_ACCESS_TOKEN")
		}(),
	}
}

// #region Getters

func (c *Config) GetPort() string {
	return c.port
}

func (c *Config) GetDataDir() string {
	return c.dataDir
}

func (c *Config) GetSourcesFile() string {
	return c.sourcesFile
}

func (c *Config) GetDbPath() string {
	return c.dbPath
}

// Get the configured local timezone all events are expressed in
func (c *Config) GetLocation() *time.Location {
	return c.location
}

func (c *Config) GetCronSpec() string {
	return c.cronSpec
}

// Get the announcement offset: announce events starting in N days
func (c *Config) GetDaysAhead() int {
	return c.daysAhead
}

func (c *Config) GetIcalCalName() string {
	return c.icalCalName
}

func (c *Config) GetHTTPTimeout() time.Duration {
	return c.httpTimeout
}

func (c *Config) GetEventbriteToken() string {
	return c.eventbriteToken
}

func (c *Config) GetDiscordToken() string {
	return c.discordToken
}

func (c *Config) GetDiscordChannelID() string {
	return c.discordChannelID
}

func (c *Config) GetMastodonURL() string {
	return c.mastodonURL
}

func (c *Config) GetMastodonToken() string {
	return c.mastodonToken
}

// #endregion
