package utils

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"commcal/src-server/model"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config    *Config
	RawDb     *sql.DB
	BunDb     *bun.DB
	DgSession *discordgo.Session
}

func NewAppState() *AppState {
	as := &AppState{}

	// env
	as.Config = NewConfig()

	// database, holds the announcement history
	var err error
	dbPath := as.Config.GetDbPath()
	as.RawDb, err = sql.Open(sqliteshim.ShimName, dbPath+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDb.SetMaxIdleConns(8)

	as.BunDb = bun.NewDB(as.RawDb, sqlitedialect.New())
	as.BunDb.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(false),
		bundebug.FromEnv("BUNDEBUG"),
	))

	if err := model.CreateSchema(context.Background(), as.BunDb); err != nil {
		slog.Error("cannot create database schema", "error", err)
		os.Exit(1)
	}

	// discord session; only needed for announcements, stays nil when no
	// token is configured
	if token := as.Config.GetDiscordToken(); token != "" {
		as.DgSession, err = discordgo.New("Bot " + token)
		if err != nil {
			slog.Error("cannot create discord session", "error", err)
			os.Exit(1)
		}
	}

	return as
}
