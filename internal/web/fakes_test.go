package web

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

var errStoreDown = errors.New("store operation failed: connection refused")

// memStore is an in-memory stand-in for both repositories.
type memStore struct {
	mu         sync.Mutex
	ready      bool
	fail       bool
	calls      int
	categories map[string]models.Category
	expenses   map[string]models.Expense
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		ready:      true,
		categories: map[string]models.Category{},
		expenses:   map[string]models.Expense{},
		clock:      time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) enter() error {
	m.calls++
	if !m.ready {
		return fmt.Errorf("%w", database.ErrNotConfigured)
	}
	if m.fail {
		return errStoreDown
	}
	return nil
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) Ready() bool { return m.ready }

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type memCategories struct{ *memStore }

type memExpenses struct{ *memStore }

func (m memCategories) List(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	var out []models.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memCategories) Create(_ context.Context, in models.NewCategory) (*models.Category, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	cat := models.Category{ID: uuid.NewString(), Name: in.Name, Color: in.Color, Icon: in.Icon, CreatedAt: m.tick()}
	m.categories[cat.ID] = cat
	return &cat, nil
}

func (m memCategories) Update(_ context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	cat, ok := m.categories[id]
	if !ok {
		return nil, errStoreDown
	}
	if patch.Name != nil {
		cat.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		cat.Color = *patch.Color
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}
	m.categories[id] = cat
	return &cat, nil
}

func (m memCategories) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	delete(m.categories, id)
	for eid, e := range m.expenses {
		if e.CategoryID != nil && *e.CategoryID == id {
			e.CategoryID = nil
			m.expenses[eid] = e
		}
	}
	return nil
}

func (m memExpenses) join(e models.Expense) models.Expense {
	e.Category = nil
	if e.CategoryID != nil {
		if cat, ok := m.categories[*e.CategoryID]; ok {
			e.Category = &cat
		}
	}
	return e
}

func (m memExpenses) List(_ context.Context, f models.ExpenseFilter) ([]models.Expense, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	var out []models.Expense
	for _, e := range m.expenses {
		if f.StartDate != "" && e.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && e.Date > f.EndDate {
			continue
		}
		if f.CategoryID != "" && (e.CategoryID == nil || *e.CategoryID != f.CategoryID) {
			continue
		}
		out = append(out, m.join(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m memExpenses) Create(_ context.Context, in models.NewExpense) (*models.Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	e := models.Expense{
		ID:          uuid.NewString(),
		Amount:      in.Amount,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
		CreatedAt:   m.tick(),
	}
	m.expenses[e.ID] = e
	joined := m.join(e)
	return &joined, nil
}

func (m memExpenses) Update(_ context.Context, id string, patch models.ExpensePatch) (*models.Expense, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	e, ok := m.expenses[id]
	if !ok {
		return nil, errStoreDown
	}
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.SetCategory {
		e.CategoryID = patch.CategoryID
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	m.expenses[id] = e
	joined := m.join(e)
	return &joined, nil
}

func (m memExpenses) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	delete(m.expenses, id)
	return nil
}

type stubSuggester struct {
	category string
	err      error
}

func (s stubSuggester) SuggestCategory(context.Context, string, []string) (*gemini.CategorySuggestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &gemini.CategorySuggestion{Category: s.category, Confidence: 0.9, Reasoning: "looks right"}, nil
}
