package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

var (
	soilColor   string
	season      string
	aspectRatio string
	outPath     string
)

var suggestCmd = &cobra.Command{
	Use:     "suggest",
	Short:   "Suggest crops for a location, soil colour and season",
	Example: `  shetkarictl suggest --lang en --location "Pune, Maharashtra" --soil black --season kharif`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := parseLanguage()
		if err != nil {
			return err
		}
		if location == "" {
			return errors.New("--location is required")
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.client.CropSuggestions(cmd.Context(), types.RequestContext{
			Language:  lang,
			Location:  location,
			SoilColor: types.SoilColor(soilColor),
			Season:    types.Season(season),
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSuggestions(res))
		return nil
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <crop or product>",
	Short: "Show growing guidance, inputs and nearby shops",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := parseLanguage()
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.client.CropDetails(cmd.Context(), types.RequestContext{
			Language: lang,
			Location: location,
			Query:    strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		out, err := renderDetails(res, 80)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices <crop>",
	Short: "Show the estimated market price trend for the last six months",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := parseLanguage()
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		crop := strings.Join(args, " ")
		res, err := s.client.PriceTrends(cmd.Context(), types.RequestContext{
			Language: lang,
			Location: location,
			Query:    crop,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderPriceTrend(crop, res, 40))
		return nil
	},
}

var imageCmd = &cobra.Command{
	Use:   "image <subject>",
	Short: "Generate a photograph of a crop or product",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aspect := types.DefaultAspectRatio
		if aspectRatio != "" {
			a, ok := types.ParseAspectRatio(aspectRatio)
			if !ok {
				return fmt.Errorf("unsupported aspect ratio %q", aspectRatio)
			}
			aspect = a
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		subject := strings.Join(args, " ")
		url, ok, err := s.client.GenerateCropImage(cmd.Context(), subject, aspect)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no image generated")
		}
		return writeImage(cmd, url, outPath, slug(subject))
	},
}

var logoCmd = &cobra.Command{
	Use:   "logo",
	Short: "Generate the Smart Shetkari logo",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		url, ok, err := s.client.GenerateLogo(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no image generated")
		}
		return writeImage(cmd, url, outPath, "logo")
	},
}

func init() {
	suggestCmd.Flags().StringVar(&soilColor, "soil", string(types.SoilBlack), "soil colour: black, red, alluvial, laterite or sandy")
	suggestCmd.Flags().StringVar(&season, "season", string(types.SeasonKharif), "season: kharif, rabi or zaid")
	imageCmd.Flags().StringVar(&aspectRatio, "aspect", "", "aspect ratio: 1:1, 3:4, 4:3, 9:16 or 16:9 (default 16:9)")
	imageCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <subject>.<ext>)")
	logoCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default logo.<ext>)")
}

func writeImage(cmd *cobra.Command, url, path, base string) error {
	data, ext, err := decodeDataURL(url)
	if err != nil {
		return err
	}
	if path == "" {
		path = base + ext
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("saved "+path))
	return nil
}
