package bot

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/config"
	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

const (
	testChatID = int64(12345)
	testUserID = int64(123456)
)

var (
	errNotFound  = errors.New("store operation failed: no rows in result set")
	errStoreDown = errors.New("store operation failed: connection refused")

	// Tuesday.
	testNow = time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
)

// fakeStore is an in-memory implementation of both bot stores.
type fakeStore struct {
	mu         sync.Mutex
	ready      bool
	fail       bool
	calls      int
	seq        int
	categories map[string]models.Category
	expenses   map[string]models.Expense
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ready:      true,
		categories: map[string]models.Category{},
		expenses:   map[string]models.Expense{},
	}
}

func (s *fakeStore) enter() error {
	s.calls++
	if !s.ready {
		return database.ErrNotConfigured
	}
	if s.fail {
		return errStoreDown
	}
	return nil
}

func (s *fakeStore) Ready() bool { return s.ready }

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeStore) addCategory(name string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	cat := models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     models.DefaultCategoryColor,
		Icon:      models.DefaultCategoryIcon,
		CreatedAt: testNow.Add(time.Duration(s.seq) * time.Second),
	}
	s.categories[cat.ID] = cat
	return cat
}

func (s *fakeStore) addExpense(id, amount, description, date string, category *models.Category) models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if id == "" {
		id = uuid.NewString()
	}
	e := models.Expense{
		ID:          id,
		Amount:      mustParseDecimal(amount),
		Description: description,
		Date:        date,
		CreatedAt:   testNow.Add(time.Duration(s.seq) * time.Second),
	}
	if category != nil {
		e.CategoryID = &category.ID
	}
	s.expenses[e.ID] = e
	return e
}

type fakeCategories struct{ *fakeStore }

type fakeExpenses struct{ *fakeStore }

func (s fakeCategories) List(context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	var out []models.Category
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	c, ok := s.categories[id]
	if !ok {
		return nil, errNotFound
	}
	return &c, nil
}

func (s fakeCategories) GetByName(_ context.Context, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return &c, nil
		}
	}
	return nil, errNotFound
}

func (s fakeCategories) Create(_ context.Context, in models.NewCategory) (*models.Category, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	c := models.Category{ID: uuid.NewString(), Name: in.Name, Color: in.Color, Icon: in.Icon, CreatedAt: testNow}
	s.categories[c.ID] = c
	return &c, nil
}

func (s fakeCategories) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return err
	}
	delete(s.categories, id)
	for eid, e := range s.expenses {
		if e.CategoryID != nil && *e.CategoryID == id {
			e.CategoryID = nil
			s.expenses[eid] = e
		}
	}
	return nil
}

func (s fakeExpenses) List(_ context.Context, f models.ExpenseFilter) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	var out []models.Expense
	for _, e := range s.expenses {
		if f.CategoryID != "" && (e.CategoryID == nil || *e.CategoryID != f.CategoryID) {
			continue
		}
		if e.CategoryID != nil {
			if c, ok := s.categories[*e.CategoryID]; ok {
				e.Category = &c
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s fakeExpenses) Create(_ context.Context, in models.NewExpense) (*models.Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	s.seq++
	e := models.Expense{
		ID:          uuid.NewString(),
		Amount:      in.Amount,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
		CreatedAt:   testNow.Add(time.Duration(s.seq) * time.Second),
	}
	s.expenses[e.ID] = e
	if e.CategoryID != nil {
		if c, ok := s.categories[*e.CategoryID]; ok {
			e.Category = &c
		}
	}
	return &e, nil
}

func (s fakeExpenses) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return err
	}
	delete(s.expenses, id)
	return nil
}

type fakeSuggester struct {
	category string
	err      error
	calls    int
}

func (f *fakeSuggester) SuggestCategory(context.Context, string, []string) (*gemini.CategorySuggestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &gemini.CategorySuggestion{Category: f.category, Confidence: 0.8}, nil
}

// setupTestBot creates a Bot backed by an in-memory store with a fixed clock.
func setupTestBot(t *testing.T, store *fakeStore, suggester CategorySuggester) *Bot {
	t.Helper()

	cfg := &config.Config{
		TelegramBotToken:   "test-token",
		WhitelistedUserIDs: []int64{testUserID},
	}
	b := newBot(cfg, fakeCategories{store}, fakeExpenses{store}, suggester)
	b.now = func() time.Time { return testNow }
	return b
}

// mustParseDecimal parses a decimal string or panics (for test data).
func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal in test: " + s)
	}
	return d
}
