package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/config"
	"github.com/codyseavey/pokido/internal/services"
)

var (
	localeFlag   string
	languageFlag string
	albumKeyFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pokido",
	Short: "Identify Pokemon cards and keep an album from the terminal",
	Long: `Pokido identifies Pokemon cards from a photo or a typed name and number,
and keeps an album of collected cards grouped by set.

Settings come from $XDG_CONFIG_HOME/pokido/config.toml (or POKIDO_CONFIG),
a .env file and environment variables. The album is stored as JSON files under
album_dir.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&localeFlag, "lang", "", "Display locale (he or en)")
	rootCmd.PersistentFlags().StringVar(&languageFlag, "language", "english", "Card print language (english, japanese)")
	rootCmd.PersistentFlags().StringVar(&albumKeyFlag, "album", album.DefaultKey, "Album key")
}

// newScanService wires the scan chain from configuration. The CLI keeps no
// scan log.
func newScanService(cfg *config.Config) *services.ScanService {
	vision := services.NewVisionService(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.VisionTimeout())
	catalog := services.NewTCGdexService(cfg.CatalogTimeout())
	images := services.NewPokemonTCGService(cfg.PokemonTCGAPIKey, cfg.FallbackTimeout())
	resolver := services.NewCatalogResolver(catalog, images, cfg.NearNumberTolerance)
	presenter := services.NewPresenter(cfg.EURRate, cfg.USDRate, cfg.Currency, cfg.DefaultLocale)
	return services.NewScanService(vision, resolver, presenter, nil)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

func locale(svc *services.ScanService) string {
	return svc.Presenter().MatchLocale(localeFlag, "")
}
