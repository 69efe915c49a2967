package stubapi

import (
	"fmt"
	"hash/fnv"
	"strings"

	"dishdash/internal/core/api"
)

// dishTemplate 產生建議用的菜式
type dishTemplate struct {
	format      string
	description string
	minutes     int
	difficulty  int
}

var dishTemplates = []dishTemplate{
	{"%s Stir-Fry", "A quick stir-fry built around %s.", 20, 3},
	{"Roasted %s Bowl", "Oven-roasted %s served over greens.", 45, 4},
	{"Creamy %s Soup", "A comforting soup that highlights %s.", 35, 5},
	{"%s Fried Rice", "Day-old rice tossed with %s.", 15, 2},
	{"Baked %s Casserole", "A hearty bake layered with %s.", 60, 6},
}

// Generator 以食材決定性地產生建議與詳情
type Generator struct{}

// Suggest 依食材產生建議；過敏原與不符合時間或難度的會被過濾
func (Generator) Suggest(req api.GenerateRequest) []api.Suggestion {
	ingredients := usable(req.Ingredients, req.Allergies)
	if len(ingredients) == 0 {
		return nil
	}

	main := titleCase(ingredients[0])
	listed := strings.Join(ingredients, ", ")
	start := int(hash(strings.Join(ingredients, ",")) % uint32(len(dishTemplates)))

	out := make([]api.Suggestion, 0, 3)
	for i := 0; i < len(dishTemplates) && len(out) < 3; i++ {
		t := dishTemplates[(start+i)%len(dishTemplates)]
		if req.CookingTime != nil && t.minutes > *req.CookingTime {
			continue
		}
		if req.Difficulty != nil && t.difficulty > *req.Difficulty {
			continue
		}
		desc := fmt.Sprintf(t.description, listed)
		minutes, difficulty := t.minutes, t.difficulty
		out = append(out, api.Suggestion{
			Name:        fmt.Sprintf(t.format, main),
			Description: &desc,
			CookingTime: &minutes,
			Difficulty:  &difficulty,
		})
	}
	return out
}

// Details 依名稱產生完整食譜
func (Generator) Details(req api.DetailsRequest) api.RecipeDetail {
	name := strings.TrimSpace(req.RecipeName)
	servings := req.Servings
	if servings <= 0 {
		servings = 2
	}

	words := strings.Fields(strings.ToLower(name))
	ingredients := make([]api.IngredientLine, 0, len(words)+2)
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		ingredients = append(ingredients, api.IngredientLine{Name: w, Quantity: fmt.Sprintf("%d portions", servings)})
	}
	ingredients = append(ingredients,
		api.IngredientLine{Name: "olive oil", Quantity: "2 tbsp"},
		api.IngredientLine{Name: "salt", Quantity: "1 tsp"},
	)

	steps := []string{
		"Prepare and measure all ingredients.",
		"Heat the olive oil in a large pan.",
		fmt.Sprintf("Cook the %s until done.", strings.ToLower(name)),
		"Season with salt and serve.",
	}
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, s)
	}

	h := hash(strings.ToLower(name))
	cooking, prep, difficulty := 15+int(h%40), 5+int(h%15), 1+int(h%8)
	desc := fmt.Sprintf("Homestyle %s for %d.", name, servings)

	return api.RecipeDetail{
		Name:         name,
		Description:  &desc,
		Servings:     servings,
		Ingredients:  ingredients,
		Instructions: b.String(),
		CookingTime:  &cooking,
		PrepTime:     &prep,
		Difficulty:   &difficulty,
	}
}

// usable 去掉空白與過敏原
func usable(ingredients, allergies []string) []string {
	blocked := make(map[string]bool, len(allergies))
	for _, a := range allergies {
		blocked[strings.ToLower(strings.TrimSpace(a))] = true
	}
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" || blocked[strings.ToLower(ing)] {
			continue
		}
		out = append(out, ing)
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
