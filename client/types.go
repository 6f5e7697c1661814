// Package client keeps an in-memory view of the user's session and meal list
// synchronized with the backend, falling back to device-local storage when
// the network is unavailable. It is the state layer a UI sits on top of: one
// CredentialStore and one MealStore, constructed once at process start and
// driven by a single logical caller (neither store is goroutine-safe).
package client

import (
	"encoding/json"
	"strconv"
	"time"
)

// Storage keys; together they are the entire on-device persisted state.
const (
	keyUserInfo       = "userInfo"
	keyUserToken      = "userToken"
	keyMeals          = "meals"
	keyNutritionGoals = "nutritionGoals"
)

// User is the profile the backend returns at login/register.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Meal is one logged food entry. The validate tags are checked client-side
// before a meal is ever sent to the backend.
type Meal struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Category    string    `json:"category" validate:"required,oneof=Breakfast Lunch Dinner Snack"`
	Calories    float64   `json:"calories" validate:"gte=0"`
	Protein     float64   `json:"protein" validate:"gte=0"`
	Carbs       float64   `json:"carbs" validate:"gte=0"`
	Fat         float64   `json:"fat" validate:"gte=0"`
	Date        time.Time `json:"date,omitempty"`
	Description string    `json:"description,omitempty"`
}

// UnmarshalJSON tolerates sloppy payloads: numeric fields that are absent,
// null, or unparseable decode to zero rather than failing the whole record.
func (m *Meal) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Category    string          `json:"category"`
		Calories    json.RawMessage `json:"calories"`
		Protein     json.RawMessage `json:"protein"`
		Carbs       json.RawMessage `json:"carbs"`
		Fat         json.RawMessage `json:"fat"`
		Date        time.Time       `json:"date"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.ID = asString(raw.ID)
	m.Name = raw.Name
	m.Category = raw.Category
	m.Calories = asFloat(raw.Calories)
	m.Protein = asFloat(raw.Protein)
	m.Carbs = asFloat(raw.Carbs)
	m.Fat = asFloat(raw.Fat)
	m.Date = raw.Date
	m.Description = raw.Description
	return nil
}

// MealPatch is a partial meal update; nil fields are not sent and not
// applied.
type MealPatch struct {
	Name        *string    `json:"name,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Calories    *float64   `json:"calories,omitempty"`
	Protein     *float64   `json:"protein,omitempty"`
	Carbs       *float64   `json:"carbs,omitempty"`
	Fat         *float64   `json:"fat,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
}

func (p MealPatch) apply(m *Meal) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Calories != nil {
		m.Calories = *p.Calories
	}
	if p.Protein != nil {
		m.Protein = *p.Protein
	}
	if p.Carbs != nil {
		m.Carbs = *p.Carbs
	}
	if p.Fat != nil {
		m.Fat = *p.Fat
	}
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
}

// NutritionGoals are the per-day targets. They double as the totals type
// returned by DailyTotals.
type NutritionGoals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func DefaultGoals() NutritionGoals {
	return NutritionGoals{Calories: 2000, Protein: 100, Carbs: 250, Fat: 70}
}

// UnmarshalJSON falls back to the default for any field that is missing or
// unparseable, never to zero or to a previous value.
func (g *NutritionGoals) UnmarshalJSON(data []byte) error {
	var raw struct {
		Calories json.RawMessage `json:"calories"`
		Protein  json.RawMessage `json:"protein"`
		Carbs    json.RawMessage `json:"carbs"`
		Fat      json.RawMessage `json:"fat"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d := DefaultGoals()
	g.Calories = floatOr(raw.Calories, d.Calories)
	g.Protein = floatOr(raw.Protein, d.Protein)
	g.Carbs = floatOr(raw.Carbs, d.Carbs)
	g.Fat = floatOr(raw.Fat, d.Fat)
	return nil
}

func asFloat(raw json.RawMessage) float64 {
	return floatOr(raw, 0)
}

func floatOr(raw json.RawMessage, def float64) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return def
}

func asString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// some backends hand out numeric ids
	return string(raw)
}
