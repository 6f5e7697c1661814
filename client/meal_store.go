package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/abhishek02004/MAD-Project/client/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MealStore keeps the visible meal list and nutrition goals synchronized
// with the backend. Every mutating operation follows one shape: mark
// loading, clear the previous error, try the network, reconcile on success
// or apply a local-only fallback on failure, persist the full list snapshot,
// unmark loading. Failed writes are not queued or retried; the next
// successful fetch overwrites whatever local patch was applied.
type MealStore struct {
	api      *api
	creds    *CredentialStore
	store    *storage.Store
	log      *zap.Logger
	validate *validator.Validate

	meals   []Meal
	goals   NutritionGoals
	loading bool
	errMsg  string
}

// NewMealStore builds the store and loads persisted nutrition goals. Meals
// are not loaded here; the first FetchMeals does that.
func NewMealStore(baseURL string, creds *CredentialStore, store *storage.Store, log *zap.Logger) *MealStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MealStore{
		api:      newAPI(baseURL),
		creds:    creds,
		store:    store,
		log:      log,
		validate: validator.New(),
		goals:    DefaultGoals(),
	}
	s.loadGoals()
	return s
}

func (s *MealStore) loadGoals() {
	stored, err := s.store.GetItem(keyNutritionGoals)
	if err != nil {
		s.log.Warn("failed to load nutrition goals", zap.Error(err))
		return
	}
	if stored == "" {
		return
	}
	var g NutritionGoals
	if err := json.Unmarshal([]byte(stored), &g); err != nil {
		s.log.Warn("stored nutrition goals are corrupt", zap.Error(err))
		return
	}
	s.goals = g
}

// FetchMeals replaces the list with the backend's records for the given
// calendar day. Without a session token it is a no-op. When the request
// fails, the last locally cached full list is loaded instead; note the
// cache is not date-filtered, so the offline view can show other days'
// meals. Responses are applied in completion order: a slow earlier fetch
// can overwrite a later one.
func (s *MealStore) FetchMeals(ctx context.Context, date time.Time) {
	token := s.creds.Token()
	if token == "" {
		return
	}

	s.loading = true
	s.errMsg = ""
	defer func() { s.loading = false }()

	day := date.Format("2006-01-02")
	var fetched []Meal
	err := s.api.do(ctx, http.MethodGet, "/api/meals/date/"+day, token, nil, &fetched)
	if err != nil {
		s.errMsg = err.Error()
		s.log.Warn("fetch meals failed, falling back to cache", zap.Error(err))

		cached, cacheErr := s.loadCachedMeals()
		if cacheErr != nil {
			s.log.Warn("failed to load meals from storage", zap.Error(cacheErr))
			return
		}
		if cached != nil {
			s.meals = cached
		}
		s.persistMeals()
		return
	}

	if fetched == nil {
		fetched = []Meal{}
	}
	s.meals = fetched
	s.persistMeals()
}

// AddMeal validates the meal locally, then posts it. On success the
// server-returned record (with its assigned id) is appended; on failure the
// meal is kept client-side with a generated id so it is never silently lost,
// even though it diverges from the backend's state.
func (s *MealStore) AddMeal(ctx context.Context, meal Meal) {
	if err := s.validate.Struct(meal); err != nil {
		s.errMsg = err.Error()
		return
	}

	s.loading = true
	s.errMsg = ""
	defer func() { s.loading = false }()

	var created Meal
	err := s.api.do(ctx, http.MethodPost, "/api/meals", s.creds.Token(), meal, &created)
	if err != nil {
		s.errMsg = err.Error()
		s.log.Warn("add meal failed, keeping locally", zap.Error(err))

		meal.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
		s.meals = append(s.meals, meal)
		s.persistMeals()
		return
	}

	s.meals = append(s.meals, created)
	s.persistMeals()
}

// UpdateMeal sends a partial update. On success the matching entry is
// replaced with the server response; on failure the patch is merged into
// the local copy directly.
func (s *MealStore) UpdateMeal(ctx context.Context, id string, patch MealPatch) {
	s.loading = true
	s.errMsg = ""
	defer func() { s.loading = false }()

	var updated Meal
	err := s.api.do(ctx, http.MethodPut, "/api/meals/"+id, s.creds.Token(), patch, &updated)
	if err != nil {
		s.errMsg = err.Error()
		s.log.Warn("update meal failed, patching locally", zap.Error(err))

		for i := range s.meals {
			if s.meals[i].ID == id {
				patch.apply(&s.meals[i])
			}
		}
		s.persistMeals()
		return
	}

	for i := range s.meals {
		if s.meals[i].ID == id {
			s.meals[i] = updated
		}
	}
	s.persistMeals()
}

// DeleteMeal is optimistic: the local entry is pruned whether or not the
// backend call succeeded. Deleting an unknown id leaves the list unchanged.
func (s *MealStore) DeleteMeal(ctx context.Context, id string) {
	s.loading = true
	s.errMsg = ""
	defer func() { s.loading = false }()

	err := s.api.do(ctx, http.MethodDelete, "/api/meals/"+id, s.creds.Token(), nil, nil)
	if err != nil {
		s.errMsg = err.Error()
		s.log.Warn("delete meal failed, removing locally anyway", zap.Error(err))
	}

	kept := make([]Meal, 0, len(s.meals))
	for _, m := range s.meals {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.meals = kept
	s.persistMeals()
}

// UpdateNutritionGoals overwrites the goals wholesale, in memory and in
// storage. Goals are device-local; there is no backend call.
func (s *MealStore) UpdateNutritionGoals(goals NutritionGoals) {
	s.goals = goals

	data, _ := json.Marshal(goals)
	if err := s.store.SetItem(keyNutritionGoals, string(data)); err != nil {
		s.log.Warn("failed to persist nutrition goals", zap.Error(err))
	}
}

// DailyTotals sums calories/protein/carbs/fat over the current list.
func (s *MealStore) DailyTotals() NutritionGoals {
	var t NutritionGoals
	for _, m := range s.meals {
		t.Calories += m.Calories
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fat += m.Fat
	}
	return t
}

// persistMeals writes the entire list; storage always holds a full snapshot.
func (s *MealStore) persistMeals() {
	data, err := json.Marshal(s.meals)
	if err != nil {
		s.log.Warn("failed to encode meals", zap.Error(err))
		return
	}
	if err := s.store.SetItem(keyMeals, string(data)); err != nil {
		s.log.Warn("failed to persist meals", zap.Error(err))
	}
}

func (s *MealStore) loadCachedMeals() ([]Meal, error) {
	stored, err := s.store.GetItem(keyMeals)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, nil
	}
	var meals []Meal
	if err := json.Unmarshal([]byte(stored), &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// Meals is the current in-memory list. The store owns the slice; callers
// must not mutate it.
func (s *MealStore) Meals() []Meal { return s.meals }

// Goals are the current nutrition targets.
func (s *MealStore) Goals() NutritionGoals { return s.goals }

// Err is the message from the last failed operation, "" after a success.
func (s *MealStore) Err() string { return s.errMsg }

// Loading reports whether an operation is in flight.
func (s *MealStore) Loading() bool { return s.loading }
