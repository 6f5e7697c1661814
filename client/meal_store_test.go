package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/abhishek02004/MAD-Project/client/storage"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testDay = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

// mealBackend is a fake API that assigns sequential ids and serves a fixed
// list per date request. It counts requests so tests can assert no call was
// made.
type mealBackend struct {
	mux      *http.ServeMux
	requests int
	byDate   []Meal
}

func newMealBackend() *mealBackend {
	b := &mealBackend{mux: http.NewServeMux()}
	created := 0

	b.mux.HandleFunc("/api/meals", func(w http.ResponseWriter, r *http.Request) {
		b.requests++
		var m Meal
		_ = json.NewDecoder(r.Body).Decode(&m)
		created++
		m.ID = fmt.Sprintf("srv-%d", created)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(m)
	})
	b.mux.HandleFunc("/api/meals/date/", func(w http.ResponseWriter, r *http.Request) {
		b.requests++
		list := b.byDate
		if list == nil {
			list = []Meal{}
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	b.mux.HandleFunc("/api/meals/", func(w http.ResponseWriter, r *http.Request) {
		b.requests++
		id := strings.TrimPrefix(r.URL.Path, "/api/meals/")
		switch r.Method {
		case http.MethodPut:
			var patch map[string]any
			_ = json.NewDecoder(r.Body).Decode(&patch)
			updated := Meal{ID: id, Name: "Server Name", Category: "Lunch", Calories: 999}
			_ = json.NewEncoder(w).Encode(updated)
		case http.MethodDelete:
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Meal removed"})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return b
}

func seedSession(t *testing.T, st *storage.Store) {
	t.Helper()
	assert.NoError(t, st.SetItem("userInfo", `{"id":"1","name":"A","email":"a@x.com"}`))
	assert.NoError(t, st.SetItem("userToken", "test-token"))
}

// onlineStore returns a meal store wired to the fake backend with a session
// already restored from storage.
func onlineStore(t *testing.T, b *mealBackend) (*MealStore, *storage.Store) {
	t.Helper()
	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)

	st := newStorage(t)
	seedSession(t, st)
	creds := NewCredentialStore(srv.URL, st, zap.NewNop())
	return NewMealStore(srv.URL, creds, st, zap.NewNop()), st
}

// offlineStore points at a dead address so every request fails fast.
func offlineStore(t *testing.T, log *zap.Logger) (*MealStore, *storage.Store) {
	t.Helper()
	st := newStorage(t)
	seedSession(t, st)
	creds := NewCredentialStore("http://127.0.0.1:1", st, zap.NewNop())
	return NewMealStore("http://127.0.0.1:1", creds, st, log), st
}

func TestAddMealOnlineUsesServerIDs(t *testing.T) {
	b := newMealBackend()
	store, _ := onlineStore(t, b)

	for i := 0; i < 3; i++ {
		store.AddMeal(context.Background(), Meal{Name: "Meal", Category: "Lunch", Calories: 100})
	}

	meals := store.Meals()
	assert.Len(t, meals, 3)
	assert.Equal(t, "srv-1", meals[0].ID)
	assert.Equal(t, "srv-2", meals[1].ID)
	assert.Equal(t, "srv-3", meals[2].ID)
	assert.Empty(t, store.Err())
}

func TestAddMealOfflineKeepsLocally(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store, st := offlineStore(t, zap.New(core))

	store.AddMeal(context.Background(), Meal{
		Name: "Toast", Category: "Breakfast",
		Calories: 150, Protein: 4, Carbs: 28, Fat: 2,
	})

	meals := store.Meals()
	assert.Len(t, meals, 1)
	assert.Equal(t, float64(150), meals[0].Calories)
	assert.NotEmpty(t, store.Err())

	// client-generated id is the current millis, parseable and positive
	id, err := strconv.ParseInt(meals[0].ID, 10, 64)
	assert.NoError(t, err)
	assert.Positive(t, id)

	// full snapshot persisted despite the failure
	cached, err := st.GetItem("meals")
	assert.NoError(t, err)
	assert.Contains(t, cached, "Toast")

	assert.Equal(t, 1, logs.FilterMessage("add meal failed, keeping locally").Len())
}

func TestAddMealValidationBlocksRequest(t *testing.T) {
	b := newMealBackend()
	store, _ := onlineStore(t, b)

	store.AddMeal(context.Background(), Meal{Name: "", Category: "Lunch"})
	store.AddMeal(context.Background(), Meal{Name: "X", Category: "Brunch"})
	store.AddMeal(context.Background(), Meal{Name: "X", Category: "Lunch", Calories: -5})

	assert.Empty(t, store.Meals())
	assert.NotEmpty(t, store.Err())
	assert.Zero(t, b.requests)
}

func TestFetchMealsReplacesListWholesale(t *testing.T) {
	b := newMealBackend()
	store, _ := onlineStore(t, b)

	b.byDate = []Meal{
		{ID: "a", Name: "Eggs", Category: "Breakfast", Calories: 200},
		{ID: "b", Name: "Soup", Category: "Lunch", Calories: 300},
	}
	store.FetchMeals(context.Background(), testDay)
	assert.Len(t, store.Meals(), 2)

	b.byDate = []Meal{{ID: "c", Name: "Rice", Category: "Dinner", Calories: 400}}
	store.FetchMeals(context.Background(), testDay)

	meals := store.Meals()
	assert.Len(t, meals, 1)
	assert.Equal(t, "c", meals[0].ID)
	assert.Empty(t, store.Err())
}

func TestFetchMealsWithoutTokenIsNoop(t *testing.T) {
	b := newMealBackend()
	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)

	st := newStorage(t) // no session seeded
	creds := NewCredentialStore(srv.URL, st, zap.NewNop())
	store := NewMealStore(srv.URL, creds, st, zap.NewNop())

	store.FetchMeals(context.Background(), testDay)
	assert.Zero(t, b.requests)
	assert.Empty(t, store.Err())
}

func TestFetchMealsOfflineFallsBackToCache(t *testing.T) {
	store, st := offlineStore(t, zap.NewNop())

	// cache holds the full unfiltered list, including another day's meal
	cached := []Meal{
		{ID: "1", Name: "Eggs", Category: "Breakfast", Calories: 200, Date: testDay},
		{ID: "2", Name: "Old Pasta", Category: "Dinner", Calories: 600, Date: testDay.AddDate(0, 0, -3)},
	}
	data, _ := json.Marshal(cached)
	assert.NoError(t, st.SetItem("meals", string(data)))

	store.FetchMeals(context.Background(), testDay)

	assert.NotEmpty(t, store.Err())
	assert.Len(t, store.Meals(), 2) // no date filter on the fallback path
}

func TestFetchMealsFailureStillPersistsSnapshot(t *testing.T) {
	store, st := offlineStore(t, zap.NewNop())
	store.AddMeal(context.Background(), Meal{Name: "Toast", Category: "Breakfast", Calories: 150})

	// lose the on-device snapshot; the in-memory list is now the only copy
	assert.NoError(t, st.RemoveItem("meals"))

	store.FetchMeals(context.Background(), testDay)

	assert.Len(t, store.Meals(), 1)
	cached, err := st.GetItem("meals")
	assert.NoError(t, err)
	assert.Contains(t, cached, "Toast") // failure path rewrote the snapshot
}

func TestUpdateMealOnlineTakesServerRecord(t *testing.T) {
	b := newMealBackend()
	store, _ := onlineStore(t, b)

	store.AddMeal(context.Background(), Meal{Name: "Meal", Category: "Lunch", Calories: 100})
	id := store.Meals()[0].ID

	name := "Client Name"
	store.UpdateMeal(context.Background(), id, MealPatch{Name: &name})

	meals := store.Meals()
	assert.Len(t, meals, 1)
	// server response wins over the patch
	assert.Equal(t, "Server Name", meals[0].Name)
	assert.Equal(t, float64(999), meals[0].Calories)
}

func TestUpdateMealOfflineMergesPatch(t *testing.T) {
	store, _ := offlineStore(t, zap.NewNop())
	store.AddMeal(context.Background(), Meal{Name: "Meal", Category: "Lunch", Calories: 100, Protein: 10})
	id := store.Meals()[0].ID

	name := "Renamed"
	cal := 250.0
	store.UpdateMeal(context.Background(), id, MealPatch{Name: &name, Calories: &cal})

	meals := store.Meals()
	assert.Len(t, meals, 1)
	assert.Equal(t, "Renamed", meals[0].Name)
	assert.Equal(t, 250.0, meals[0].Calories)
	assert.Equal(t, 10.0, meals[0].Protein) // untouched field survives
	assert.NotEmpty(t, store.Err())
}

func TestDeleteMealAlwaysPrunesLocally(t *testing.T) {
	b := newMealBackend()
	store, _ := onlineStore(t, b)
	store.AddMeal(context.Background(), Meal{Name: "Meal", Category: "Lunch"})
	id := store.Meals()[0].ID

	store.DeleteMeal(context.Background(), id)
	assert.Empty(t, store.Meals())
	assert.Empty(t, store.Err())
}

func TestDeleteMealOfflineStillPrunes(t *testing.T) {
	store, _ := offlineStore(t, zap.NewNop())
	store.AddMeal(context.Background(), Meal{Name: "Meal", Category: "Lunch"})
	id := store.Meals()[0].ID

	store.DeleteMeal(context.Background(), id)
	assert.Empty(t, store.Meals())
	assert.NotEmpty(t, store.Err())
}

func TestDeleteUnknownMealIsNoop(t *testing.T) {
	b := newMealBackend()
	store, _ := onlineStore(t, b)
	store.AddMeal(context.Background(), Meal{Name: "Meal", Category: "Lunch"})

	store.DeleteMeal(context.Background(), "no-such-id")
	assert.Len(t, store.Meals(), 1)
}

func TestDailyTotals(t *testing.T) {
	store, _ := offlineStore(t, zap.NewNop())

	assert.Equal(t, NutritionGoals{}, store.DailyTotals())

	store.AddMeal(context.Background(), Meal{Name: "A", Category: "Breakfast", Calories: 150, Protein: 4, Carbs: 28, Fat: 2})
	store.AddMeal(context.Background(), Meal{Name: "B", Category: "Lunch", Calories: 350, Protein: 20})

	totals := store.DailyTotals()
	assert.Equal(t, 500.0, totals.Calories)
	assert.Equal(t, 24.0, totals.Protein)
	assert.Equal(t, 28.0, totals.Carbs)
	assert.Equal(t, 2.0, totals.Fat)
}

func TestNutritionGoalsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(newMealBackend().mux)
	t.Cleanup(srv.Close)

	st := newStorage(t)
	seedSession(t, st)
	creds := NewCredentialStore(srv.URL, st, zap.NewNop())

	store := NewMealStore(srv.URL, creds, st, zap.NewNop())
	assert.Equal(t, DefaultGoals(), store.Goals())

	saved := NutritionGoals{Calories: 1800, Protein: 130, Carbs: 200, Fat: 60}
	store.UpdateNutritionGoals(saved)

	// simulate a process restart on the same device storage
	reloaded := NewMealStore(srv.URL, creds, st, zap.NewNop())
	assert.Equal(t, saved, reloaded.Goals())
}

func TestNutritionGoalsPerFieldDefaultOnParseFailure(t *testing.T) {
	st := newStorage(t)
	seedSession(t, st)
	assert.NoError(t, st.SetItem("nutritionGoals", `{"calories":"junk","protein":120}`))

	creds := NewCredentialStore("http://127.0.0.1:1", st, zap.NewNop())
	store := NewMealStore("http://127.0.0.1:1", creds, st, zap.NewNop())

	goals := store.Goals()
	assert.Equal(t, 2000.0, goals.Calories) // unparseable falls back to the default
	assert.Equal(t, 120.0, goals.Protein)
	assert.Equal(t, 250.0, goals.Carbs)
	assert.Equal(t, 70.0, goals.Fat)
}

func TestMealDecodingToleratesSloppyNumbers(t *testing.T) {
	var m Meal
	err := json.Unmarshal([]byte(`{"id":42,"name":"Rice","category":"Dinner","calories":"310","protein":null,"fat":"oops"}`), &m)
	assert.NoError(t, err)
	assert.Equal(t, "42", m.ID)
	assert.Equal(t, 310.0, m.Calories)
	assert.Zero(t, m.Protein)
	assert.Zero(t, m.Carbs)
	assert.Zero(t, m.Fat)
}
