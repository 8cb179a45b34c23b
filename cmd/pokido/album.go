package main

import (
	"fmt"
	"os"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/config"
	"github.com/codyseavey/pokido/internal/models"
)

var albumCmd = &cobra.Command{
	Use:   "album",
	Short: "Inspect and edit the card album",
}

var albumSetsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List collected sets with completion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		state, err := store.Load(cmd.Context(), albumKeyFlag)
		if err != nil {
			return err
		}

		stats := album.SetsWithStats(state)
		if len(stats) == 0 {
			fmt.Println("Album is empty.")
			return nil
		}
		for _, s := range stats {
			total := "?"
			if s.Total > 0 {
				total = fmt.Sprint(s.Total)
			}
			fmt.Printf("%-28s %s %s\n",
				colorize.HiWhiteString("%s", s.Name),
				colorize.CyanString("%d/%s", s.Collected, total),
				colorize.GreenString("%d%%", s.Percentage))
		}

		totals := album.TotalStats(state)
		fmt.Printf("\n%d cards in %d sets\n", totals.TotalCards, totals.TotalSets)
		return nil
	},
}

var albumShowCmd = &cobra.Command{
	Use:   "show <set-id>",
	Short: "List the cards collected for one set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		state, err := store.Load(cmd.Context(), albumKeyFlag)
		if err != nil {
			return err
		}

		cards := album.SetCards(state, args[0])
		if len(cards) == 0 {
			fmt.Println("No cards in this set.")
			return nil
		}
		for _, c := range cards {
			fmt.Printf("#%-5s %-24s x%d  %s\n", c.Number, c.Name, c.ScanCount, c.ScannedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var albumAddCmd = &cobra.Command{
	Use:   "add <name> [number]",
	Short: "Look up a card and add it to the album",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc := newScanService(cfg)

		number := ""
		if len(args) == 2 {
			number = args[1]
		}
		card, err := svc.Lookup(cmd.Context(), args[0], number, models.NormalizeLanguage(languageFlag), locale(svc))
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		return saveCard(cmd, cfg, card)
	},
}

var albumExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the album document as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		data, err := store.Export(cmd.Context(), albumKeyFlag)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var albumImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the album with a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading album: %w", err)
		}
		state, err := album.Unmarshal(data)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Import(cmd.Context(), albumKeyFlag, state); err != nil {
			return err
		}

		totals := album.TotalStats(state)
		fmt.Printf("✅ Imported %d cards in %d sets\n", totals.TotalCards, totals.TotalSets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(albumCmd)
	albumCmd.AddCommand(albumSetsCmd, albumShowCmd, albumAddCmd, albumExportCmd, albumImportCmd)
}

func openStore() (*album.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return album.NewStore(album.NewFilePersistence(cfg.AlbumDir)), nil
}

func saveCard(cmd *cobra.Command, cfg *config.Config, card *models.ResolvedCard) error {
	store := album.NewStore(album.NewFilePersistence(cfg.AlbumDir))
	_, entry, err := store.AddCard(cmd.Context(), albumKeyFlag, models.AddCardRequestFromResolved(*card))
	if err != nil {
		return fmt.Errorf("error saving to album: %w", err)
	}

	if entry.ScanCount > 1 {
		fmt.Printf("✅ Already in album, scanned %d times\n", entry.ScanCount)
	} else {
		fmt.Println("✅ Saved to album")
	}
	return nil
}
