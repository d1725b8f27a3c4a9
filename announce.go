package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"commcal/src-server/announce"
	"commcal/src-server/source"
	"commcal/src-server/utils"
)

func announceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "announce",
		Short: "Post upcoming events to the configured platforms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			as := utils.NewAppState()
			sources, err := source.Load(as.Config.GetSourcesFile())
			if err != nil {
				return err
			}

			posters := make([]announce.Poster, 0, 2)
			if as.DgSession != nil && as.Config.GetDiscordChannelID() != "" {
				posters = append(posters, &announce.DiscordPoster{
					Session:   as.DgSession,
					ChannelID: as.Config.GetDiscordChannelID(),
				})
			}
			if url := as.Config.GetMastodonURL(); url != "" {
				posters = append(posters, announce.NewMastodonPoster(
					url,
					as.Config.GetMastodonToken(),
					as.Config.GetHTTPTimeout()))
			}
			if len(posters) == 0 {
				slog.Warn("no announcement platforms configured, nothing to do")
				return nil
			}

			candidates := announce.UpcomingEvents(
				as.Config.GetDataDir(),
				sources,
				as.Config.GetDaysAhead(),
				time.Now(),
				as.Config.GetLocation())
			slog.Info("events selected for announcement", "count", len(candidates))

			announce.NewAnnouncer(as.BunDb, posters...).Announce(cmd.Context(), candidates)
			return nil
		},
	}
}
