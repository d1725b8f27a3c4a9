package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "commcal",
		Short: "Aggregate community calendar sources into one combined feed",
	}
	rootCmd.AddCommand(runCmd(), announceCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
