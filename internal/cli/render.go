package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"dishdash/internal/core/api"
	"dishdash/internal/core/recipe"
)

func renderUser(w io.Writer, u *api.User) {
	if u == nil {
		fmt.Fprintln(w, "Not logged in")
		return
	}
	fmt.Fprintf(w, "Username: %s\nID:       %d\n", u.Username, u.ID)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Joined:   %s\n", u.CreatedAt.Format("2006-01-02"))
	}
}

func renderPreferences(w io.Writer, p *api.Preferences) {
	if p == nil {
		fmt.Fprintln(w, "No preferences loaded")
		return
	}
	fmt.Fprintf(w, "Dietary restrictions: %s\n", listOrNone(p.DietaryRestrictions))
	fmt.Fprintf(w, "Allergies:            %s\n", listOrNone(p.Allergies))
	if p.CookingTimePreference != nil {
		fmt.Fprintf(w, "Max cooking time:     %d min\n", *p.CookingTimePreference)
	}
	if p.DifficultyPreference != nil {
		fmt.Fprintf(w, "Difficulty:           %d/10\n", *p.DifficultyPreference)
	}
}

func renderSuggestions(w io.Writer, recipes []recipe.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRECIPE\tCOOK TIME\tDIFFICULTY")
	for i, r := range recipes {
		fmt.Fprintf(tw, "%d\t%s\t%d min\t%s\n", i+1, r.Title, r.CookTime, r.Difficulty)
	}
	_ = tw.Flush()
}

func renderSaved(w io.Writer, recipes []recipe.Recipe, filtered bool) {
	noun := "recipes"
	if len(recipes) == 1 {
		noun = "recipe"
	}
	fmt.Fprintf(w, "%d %s found\n", len(recipes), noun)
	if len(recipes) == 0 {
		if filtered {
			fmt.Fprintln(w, "Try modifying your filters to see more results")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECIPE\tCOOK TIME\tDIFFICULTY")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%s\t%d min\t%s\n", r.ID, r.Title, r.CookTime, r.Difficulty)
	}
	_ = tw.Flush()
}

func renderRecipe(w io.Writer, r recipe.Recipe) {
	fmt.Fprintf(w, "%s (id %s)\n", r.Title, r.ID)
	if r.Description != "" {
		fmt.Fprintf(w, "%s\n", r.Description)
	}
	fmt.Fprintf(w, "Prep %d min | Cook %d min | Serves %d | Difficulty %s\n", r.PrepTime, r.CookTime, r.Servings, r.Difficulty)

	fmt.Fprintln(w, "\nIngredients:")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(w, "  - %s\n", ing)
	}
	fmt.Fprintln(w, "\nInstructions:")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
