package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"finance/src/models"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps users and transactions in process. It has the same
// semantics as the Postgres store and serializes every write.
type MemoryStore struct {
	mu     *sync.Mutex
	data   *memoryData
	locked bool
}

type memoryData struct {
	users        []models.User
	transactions []models.Transaction
	nextUserID   int64
	nextTxID     int64
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		users:        append([]models.User(nil), d.users...),
		transactions: append([]models.Transaction(nil), d.transactions...),
		nextUserID:   d.nextUserID,
		nextTxID:     d.nextTxID,
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: &memoryData{nextUserID: 1, nextTxID: 1}}
}

func (s *MemoryStore) Users() UserRepository {
	return &memoryUserRepo{store: s}
}

func (s *MemoryStore) Transactions() TransactionRepository {
	return &memoryTransactionRepo{store: s}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.locked {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	err := fn(&MemoryStore{mu: s.mu, data: s.data, locked: true})
	if err != nil {
		*s.data = *snapshot
	}
	return err
}

func (s *MemoryStore) lock() func() {
	if s.locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memoryUserRepo struct {
	store *MemoryStore
}

func (r *memoryUserRepo) Create(_ context.Context, u *models.User) error {
	defer r.store.lock()()
	data := r.store.data
	for _, existing := range data.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	u.ID = data.nextUserID
	u.CreatedAt = time.Now().UTC()
	data.nextUserID++
	data.users = append(data.users, *u)
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	defer r.store.lock()()
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	defer r.store.lock()()
	return r.find(func(u models.User) bool { return u.Username == username })
}

// GetForUpdate relies on WithTx holding the store mutex.
func (r *memoryUserRepo) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryUserRepo) UpdateCash(_ context.Context, id int64, cash decimal.Decimal) error {
	defer r.store.lock()()
	for i := range r.store.data.users {
		if r.store.data.users[i].ID == id {
			r.store.data.users[i].Cash = cash
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryUserRepo) find(match func(models.User) bool) (*models.User, error) {
	for _, u := range r.store.data.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

type memoryTransactionRepo struct {
	store *MemoryStore
}

func (r *memoryTransactionRepo) Create(_ context.Context, t *models.Transaction) error {
	defer r.store.lock()()
	data := r.store.data
	t.ID = data.nextTxID
	data.nextTxID++
	data.transactions = append(data.transactions, *t)
	return nil
}

func (r *memoryTransactionRepo) GetByUserID(_ context.Context, userID int64) ([]models.Transaction, error) {
	defer r.store.lock()()
	transactions := make([]models.Transaction, 0)
	for _, t := range r.store.data.transactions {
		if t.UserID == userID {
			transactions = append(transactions, t)
		}
	}
	return transactions, nil
}

func (r *memoryTransactionRepo) SharesBySymbol(_ context.Context, userID int64, symbol string) (int64, error) {
	defer r.store.lock()()
	var shares int64
	for _, t := range r.store.data.transactions {
		if t.UserID == userID && t.Symbol == symbol {
			shares += t.Shares
		}
	}
	return shares, nil
}

func (r *memoryTransactionRepo) GetHoldings(_ context.Context, userID int64) ([]models.Holding, error) {
	defer r.store.lock()()
	bySymbol := make(map[string]*models.Holding)
	for _, t := range r.store.data.transactions {
		if t.UserID != userID {
			continue
		}
		h, ok := bySymbol[t.Symbol]
		if !ok {
			h = &models.Holding{UserID: userID, Symbol: t.Symbol}
			bySymbol[t.Symbol] = h
		}
		h.Shares += t.Shares
		// transactions are stored in id order so the last one wins
		h.LastPrice = t.Price
	}

	holdings := make([]models.Holding, 0, len(bySymbol))
	for _, h := range bySymbol {
		if h.Shares != 0 {
			holdings = append(holdings, *h)
		}
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings, nil
}
