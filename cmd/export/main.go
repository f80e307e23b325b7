package main

import (
	"context"
	"fmt"
	"log"
	"os"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	statsdb "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Black-And-White-Club/wordle-bot/config"
	"github.com/Black-And-White-Club/wordle-bot/db/bundb"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "export",
		Usage: "write a channel's Wordle stats to an XLSX workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
			&cli.StringFlag{Name: "guild", Required: true, Usage: "guild id"},
			&cli.StringFlag{Name: "channel", Required: true, Usage: "channel id"},
			&cli.StringFlag{Name: "out", Value: "stats.xlsx", Usage: "output file"},
			&cli.IntFlag{Name: "fail-score", Usage: "score credited for X/6, defaults to the configured value"},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := bundb.Open(c.Context, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	failScore := cfg.Stats.FailScore
	if c.IsSet("fail-score") {
		failScore = c.Int("fail-score")
	}

	summary, results, err := loadSummary(c.Context, statsdb.NewRepository(db), c.String("guild"), c.String("channel"), failScore)
	if err != nil {
		return err
	}

	out, err := os.Create(c.String("out"))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := writeWorkbook(out, summary, results); err != nil {
		return err
	}
	fmt.Printf("Wrote %d players and %d results to %s\n", len(summary.Players), len(results), c.String("out"))
	return nil
}

// loadSummary reads stored results and links and aggregates them. Nothing is
// fetched from Discord, so unlinked nicknames stay nicknames.
func loadSummary(ctx context.Context, repo statsdb.Repository, guildID, channelID string, failScore int) (statsdomain.Summary, []statsdomain.ResultRecord, error) {
	results, err := repo.GetResults(ctx, nil, guildID, channelID)
	if err != nil {
		return statsdomain.Summary{}, nil, err
	}
	links, err := repo.GetNicknameLinks(ctx, nil, guildID, statsdomain.Nicknames(results))
	if err != nil {
		return statsdomain.Summary{}, nil, err
	}
	return statsdomain.Aggregate(results, links, failScore), results, nil
}
