package main

import (
	"fmt"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/pokido/internal/models"
)

var saveFlag bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <name> [number]",
	Short: "Find a card by Pokemon name and printed number",
	Long: `Lookup searches the catalog for a Pokemon name and picks the printing
matching the card number, e.g. "132/214" or "25".

Examples:
  pokido lookup Pikachu 25/202
  pokido lookup Charizard --language japanese
  pokido lookup Eevee 133 --save`,
	Args: cobra.RangeArgs(1, 2),
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

		printCard(card)
		if saveFlag {
			return saveCard(cmd, cfg, card)
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Identify the card in a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc := newScanService(cfg)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading image: %w", err)
		}

		card, err := svc.Scan(cmd.Context(), data, locale(svc))
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		printCard(card)
		if saveFlag {
			return saveCard(cmd, cfg, card)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(scanCmd)

	lookupCmd.Flags().BoolVarP(&saveFlag, "save", "s", false, "Add the card to the album")
	scanCmd.Flags().BoolVarP(&saveFlag, "save", "s", false, "Add the card to the album")
}

func printCard(c *models.ResolvedCard) {
	fmt.Println(colorize.HiWhiteString("%s", c.Name) + "  " + colorize.YellowString(c.Stars))
	fmt.Println(colorize.CyanString("ID:     ") + c.ID)
	fmt.Println(colorize.CyanString("Set:    ") + fmt.Sprintf("%s #%s", c.SetName, c.Number))
	fmt.Println(colorize.CyanString("Rarity: ") + c.RarityLabel)
	if c.HP > 0 {
		fmt.Println(colorize.CyanString("HP:     ") + fmt.Sprint(c.HP))
	}
	if len(c.TypeLabels) > 0 {
		fmt.Println(colorize.CyanString("Types:  ") + strings.Join(c.TypeLabels, ", "))
	}
	fmt.Println(colorize.CyanString("Value:  ") + colorize.GreenString("%d %s", c.EstimatedValue, c.Currency))
	if c.Image != "" {
		fmt.Println(colorize.CyanString("Image:  ") + c.Image)
	}
	for _, tip := range c.Tips {
		fmt.Println("  " + tip)
	}
}
