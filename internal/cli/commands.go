package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"dishdash/internal/core/api"
	"dishdash/internal/core/navigation"
	"dishdash/internal/core/recipe"
	"dishdash/internal/pkg/common"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func newFlagSet(name string, errOut io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.SetInterspersed(true)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{err: err}
	}
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if decision, _ := navigation.Guard(a.session, navigation.RouteLogin); decision == navigation.Redirect {
		fmt.Fprintf(a.out, "Already logged in as %s\n", a.session.User().Username)
		return nil
	}
	if len(args) != 1 {
		return usagef("expected exactly one username")
	}

	if err := a.session.Login(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.User().Username)
	return nil
}

func (a *App) logout(_ context.Context, _ []string) error {
	a.session.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	renderUser(a.out, a.session.User())
	return nil
}

func (a *App) prefsCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("prefs", a.errOut)
	dietary := fs.StringSlice("dietary", nil, "dietary restrictions, comma separated")
	allergies := fs.StringSlice("allergies", nil, "allergies, comma separated")
	cookingTime := fs.Int("cooking-time", 0, "preferred max cooking time in minutes")
	difficulty := fs.Int("difficulty", 0, "preferred difficulty (1-10)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var update api.PreferencesUpdate
	if fs.Changed("dietary") {
		v := common.NonBlank(*dietary)
		update.DietaryRestrictions = &v
	}
	if fs.Changed("allergies") {
		v := common.NonBlank(*allergies)
		update.Allergies = &v
	}
	if fs.Changed("cooking-time") {
		update.CookingTimePreference = cookingTime
	}
	if fs.Changed("difficulty") {
		update.DifficultyPreference = difficulty
	}

	if update.IsEmpty() {
		if err := a.prefs.Load(ctx); err != nil {
			return err
		}
	} else if !a.prefs.Update(ctx, update) {
		return errors.New(a.prefs.Error())
	}

	renderPreferences(a.out, a.prefs.Preferences())
	return nil
}

func (a *App) generate(ctx context.Context, args []string) error {
	fs := newFlagSet("generate", a.errOut)
	cookingTime := fs.String("cooking-time", "", "max cooking time in minutes")
	difficulty := fs.String("difficulty", "", "max difficulty (1-10)")
	details := fs.Int("details", 0, "load details of the Nth suggestion")
	save := fs.Bool("save", false, "save the recipe opened with --details")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *save && *details == 0 {
		return usagef("--save requires --details")
	}

	// 偏好設定失敗不影響產生，只是不帶限制
	if err := a.prefs.Load(ctx); err != nil {
		common.LogWarn("載入偏好設定失敗，以空白限制產生", zap.Error(err))
	}

	form := recipe.NewForm()
	form.Ingredients = append([]string{}, fs.Args()...)
	if len(form.Ingredients) == 0 {
		form.Ingredients = []string{""}
	}
	form.CookingTime = *cookingTime
	form.Difficulty = *difficulty

	nav, err := recipe.NewGenerator(a.client, a.prefs).Submit(ctx, form)
	if err != nil {
		return err
	}
	common.LogDebug("導向結果頁", zap.String("to", nav.String()))

	page := recipe.NewResultsPage(ctx, a.client)
	defer page.Close()

	if err := page.Load(ctx, navigation.ParseResultsQuery(nav.Query)); err != nil {
		return errors.New(page.Error())
	}
	renderSuggestions(a.out, page.Recipes())

	if *details == 0 {
		return nil
	}
	list := page.Recipes()
	if *details < 1 || *details > len(list) {
		return usagef("--details must be between 1 and %d", len(list))
	}

	full, err := page.ViewDetails(ctx, list[*details-1].ID)
	if err != nil {
		return errors.New(page.Error())
	}
	fmt.Fprintln(a.out)
	renderRecipe(a.out, full)

	if *save {
		saved, err := page.ToggleSaved(ctx, full.ID)
		if err != nil {
			return errors.New(page.Error())
		}
		if saved {
			fmt.Fprintf(a.out, "\nSaved recipe %s\n", full.ID)
		} else {
			fmt.Fprintf(a.out, "\nRemoved recipe %s from saved\n", full.ID)
		}
	}
	return nil
}

func (a *App) details(ctx context.Context, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return usagef("recipe name is required")
	}

	detail, err := a.client.RecipeDetails(ctx, api.DetailsRequest{
		RecipeName:          name,
		Servings:            recipe.DefaultServings,
		DietaryRestrictions: []string{},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", recipe.MsgDetailsFailed, err)
	}
	renderRecipe(a.out, recipe.FromDetail(name, *detail))
	return nil
}

func (a *App) save(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one recipe id")
	}
	saved, err := a.client.SaveRecipe(ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", recipe.MsgSaveFailed, err)
	}
	fmt.Fprintf(a.out, "Saved %q (id %d)\n", saved.Recipe.Name, saved.Recipe.ID)
	return nil
}

func (a *App) unsave(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one recipe id")
	}

	page := recipe.NewSavedPage(ctx, a.client)
	defer page.Close()

	if err := page.Unsave(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed recipe %s from saved\n", args[0])
	return nil
}

func (a *App) saved(ctx context.Context, args []string) error {
	fs := newFlagSet("saved", a.errOut)
	search := fs.String("search", "", "filter by name or description")
	maxTime := fs.Int("max-time", 0, "max cooking time in minutes")
	maxDifficulty := fs.Int("max-difficulty", 0, "max difficulty (1-10)")
	open := fs.String("open", "", "show the full saved recipe with this id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	page := recipe.NewSavedPage(ctx, a.client)
	defer page.Close()

	if err := page.Load(ctx); err != nil {
		return errors.New(page.Error())
	}

	if *open != "" {
		r, ok := page.Open(*open)
		if !ok {
			return fmt.Errorf("recipe %s is not in your saved recipes", *open)
		}
		renderRecipe(a.out, r)
		return nil
	}

	filters := recipe.Filters{Search: *search, MaxCookTime: *maxTime, MaxDifficulty: *maxDifficulty}
	renderSaved(a.out, page.Filter(filters), filters.IsActive())
	return nil
}
