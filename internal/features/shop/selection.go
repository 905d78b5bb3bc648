package shop

import (
	"sync"
	"time"
)

// selectionTTL — сколько живёт выбор бренда без активности. Потеря выбора
// стоит пользователю лишнего нажатия, но не денег.
const selectionTTL = 15 * time.Minute

// Selection — где пользователь находится в витрине.
type Selection struct {
	Category  string
	Brand     string
	UpdatedAt time.Time
}

// SelectionStore хранит выбор по chat ID в памяти. Переживать рестарт
// ему не нужно, поэтому БД тут избыточна.
type SelectionStore struct {
	mu         sync.Mutex
	selections map[int64]*Selection
}

// NewSelectionStore создаёт хранилище выбора.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{selections: make(map[int64]*Selection)}
}

// SetCategory запоминает категорию и сбрасывает бренд.
func (s *SelectionStore) SetCategory(chatID int64, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[chatID] = &Selection{Category: category, UpdatedAt: time.Now()}
}

// SetBrand запоминает бренд внутри уже выбранной категории.
func (s *SelectionStore) SetBrand(chatID int64, brand string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[chatID]
	if !ok {
		return
	}
	sel.Brand = brand
	sel.UpdatedAt = time.Now()
}

// Get возвращает актуальный выбор или nil, если его нет или он протух.
func (s *SelectionStore) Get(chatID int64) *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[chatID]
	if !ok {
		return nil
	}
	if time.Since(sel.UpdatedAt) > selectionTTL {
		delete(s.selections, chatID)
		return nil
	}
	copied := *sel
	return &copied
}

// ClearBrand снимает выбор бренда, оставляя категорию. Кнопка «назад».
func (s *SelectionStore) ClearBrand(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel, ok := s.selections[chatID]; ok {
		sel.Brand = ""
		sel.UpdatedAt = time.Now()
	}
}

// Clear полностью забывает выбор. Возврат в главное меню.
func (s *SelectionStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, chatID)
}
