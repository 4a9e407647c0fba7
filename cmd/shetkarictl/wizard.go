package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/af-corp/shetkari-gateway/internal/flow"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Walk through location, soil and season to crop advice",
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

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		m := flow.NewMachine(s.client, logger)
		return runWizard(cmd.Context(), m, lang, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// errQuit ends the wizard without an error.
var errQuit = errors.New("quit")

// runWizard drives m from line-oriented input until the input ends or the
// user types q.
func runWizard(ctx context.Context, m *flow.Machine, lang types.Language, in io.Reader, out io.Writer) error {
	w := &wizard{m: m, lang: lang, in: bufio.NewScanner(in), out: out}
	for _, e := range []flow.Event{flow.SplashFinished{}, flow.LoggedIn{}} {
		if _, err := m.Dispatch(ctx, e); err != nil {
			return err
		}
	}

	for {
		err := w.step(ctx)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, flow.ErrInvalidTransition) {
			fmt.Fprintln(out, errorStyle.Render("not available here"))
			continue
		}
		if err != nil {
			return err
		}
	}
}

type wizard struct {
	m    *flow.Machine
	lang types.Language
	in   *bufio.Scanner
	out  io.Writer
}

func (w *wizard) step(ctx context.Context) error {
	s := w.m.State()
	if s.Error != "" {
		fmt.Fprintln(w.out, errorStyle.Render(s.Error))
	}

	switch s.Step {
	case flow.StepLocation:
		line, err := w.prompt("Location (village, district or city)")
		if err != nil {
			return err
		}
		if line == "" {
			if s.Location == "" {
				return nil
			}
			line = s.Location
		}
		return w.dispatch(ctx, flow.LocationChosen{Language: w.lang, Location: line})

	case flow.StepSoil:
		i, err := w.choose(ctx, "Soil colour", toStrings(types.SoilColors))
		if err != nil || i < 0 {
			return err
		}
		return w.dispatch(ctx, flow.SoilChosen{SoilColor: types.SoilColors[i]})

	case flow.StepSeason:
		i, err := w.choose(ctx, "Season", toStrings(types.Seasons))
		if err != nil || i < 0 {
			return err
		}
		fmt.Fprintln(w.out, faintStyle.Render("asking for suggestions..."))
		return w.dispatch(ctx, flow.SeasonChosen{Season: types.Seasons[i]})

	case flow.StepSuggestions:
		if s.Suggestions == nil {
			return w.dispatch(ctx, flow.Back{})
		}
		fmt.Fprint(w.out, renderSuggestions(s.Suggestions))
		names := make([]string, len(s.Suggestions.SuggestedCrops))
		for i, c := range s.Suggestions.SuggestedCrops {
			names[i] = c.Name
		}
		i, err := w.choose(ctx, "Crop details", names)
		if err != nil || i < 0 {
			return err
		}
		fmt.Fprintln(w.out, faintStyle.Render("loading details..."))
		return w.dispatch(ctx, flow.CropSelected{Crop: names[i]})

	case flow.StepDetails:
		out, err := renderDetails(s.Details, 80)
		if err != nil {
			return err
		}
		fmt.Fprint(w.out, out)
		_, err = w.choose(ctx, "", nil)
		return err
	}
	return fmt.Errorf("unexpected step %s", s.Step)
}

func (w *wizard) dispatch(ctx context.Context, e flow.Event) error {
	_, err := w.m.Dispatch(ctx, e)
	return err
}

func (w *wizard) prompt(label string) (string, error) {
	fmt.Fprint(w.out, headingStyle.Render(label)+": ")
	if !w.in.Scan() {
		if err := w.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(w.in.Text()), nil
}

// choose lists options and returns the picked index. Navigation commands
// (b back, r restart, o logout, q quit) are dispatched here and yield -1.
func (w *wizard) choose(ctx context.Context, label string, options []string) (int, error) {
	if label != "" {
		fmt.Fprintln(w.out, titleStyle.Render(label))
	}
	for i, o := range options {
		fmt.Fprintf(w.out, "  %d) %s\n", i+1, o)
	}
	fmt.Fprintln(w.out, faintStyle.Render("  b) back  r) restart  o) logout  q) quit"))

	line, err := w.prompt("Choice")
	if err != nil {
		return -1, err
	}
	switch line {
	case "q":
		return -1, errQuit
	case "b":
		return -1, w.dispatch(ctx, flow.Back{})
	case "r":
		return -1, w.dispatch(ctx, flow.Restart{})
	case "o":
		if err := w.dispatch(ctx, flow.Logout{}); err != nil {
			return -1, err
		}
		return -1, w.dispatch(ctx, flow.LoggedIn{})
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		fmt.Fprintln(w.out, errorStyle.Render("pick a number from the list"))
		return -1, nil
	}
	return n - 1, nil
}

func toStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
