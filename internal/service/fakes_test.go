package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exchange-service/internal/domain"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// memStore backs the in-memory repository fakes. Status transitions use
// the same compare-and-swap semantics as the SQL repositories so the
// concurrency properties can be exercised without a database.
type memStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	services  map[string]*domain.Service
	exchanges map[string]*domain.Exchange
	ratings   map[string]*domain.Rating
	messages  []*domain.ExchangeMessage
	skills    map[string][]domain.Skill
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*domain.User),
		services:  make(map[string]*domain.Service),
		exchanges: make(map[string]*domain.Exchange),
		ratings:   make(map[string]*domain.Rating),
		skills:    make(map[string][]domain.Skill),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addUser(name string, credits int) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{
		ID:      s.nextID("user"),
		Name:    name,
		Email:   name + "@mail.com",
		Age:     40,
		Credits: credits,
		Role:    domain.RoleUser,
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addService(providerID, title string, price int) *domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	service := &domain.Service{
		ID:          s.nextID("svc"),
		ProviderID:  providerID,
		Title:       title,
		Description: "demo offering for tests",
		HourlyPrice: price,
	}
	s.services[service.ID] = service
	return service
}

func (s *memStore) balance(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].Credits
}

func (s *memStore) setBalance(userID string, credits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID].Credits = credits
}

// ---- users ----

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUsers) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.User
	for _, user := range r.s.users {
		result = append(result, *user)
	}
	return result, nil
}

// ---- services ----

type memServices struct{ s *memStore }

func (r *memServices) Create(ctx context.Context, service *domain.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	service.ID = r.s.nextID("svc")
	service.CreatedAt = time.Now()
	clone := *service
	r.s.services[service.ID] = &clone
	return nil
}

func (r *memServices) Update(ctx context.Context, service *domain.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[service.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *service
	r.s.services[service.ID] = &clone
	return nil
}

func (r *memServices) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.services, id)
	return nil
}

func (r *memServices) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	service, ok := r.s.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *service
	return &clone, nil
}

func (r *memServices) ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Service
	for _, service := range r.s.services {
		if service.ProviderID == providerID {
			result = append(result, *service)
		}
	}
	return result, nil
}

func (r *memServices) List(ctx context.Context, limit, offset int) ([]domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Service
	for _, service := range r.s.services {
		result = append(result, *service)
	}
	return result, nil
}

// ---- ledger ----

type memLedger struct{ s *memStore }

func (r *memLedger) BalanceOf(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[userID]
	if !ok {
		return 0, apperrors.NewNotFound("user", nil)
	}
	return user.Credits, nil
}

func (r *memLedger) Transfer(ctx context.Context, from, to string, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transferLocked(from, to, amount)
}

func (r *memLedger) TransferInTx(ctx context.Context, tx pgx.Tx, from, to string, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transferLocked(from, to, amount)
}

func (r *memLedger) transferLocked(from, to string, amount int) error {
	if amount <= 0 {
		return apperrors.NewValidationError("transfer amount must be positive", nil)
	}
	src, ok := r.s.users[from]
	if !ok {
		return apperrors.NewNotFound("user", nil)
	}
	dst, ok := r.s.users[to]
	if !ok {
		return apperrors.NewNotFound("user", nil)
	}
	if src.Credits < amount {
		return apperrors.NewInsufficientCredits(nil)
	}
	src.Credits -= amount
	dst.Credits += amount
	return nil
}

// ---- exchanges ----

type memExchanges struct{ s *memStore }

func (r *memExchanges) Create(ctx context.Context, exchange *domain.Exchange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exchange.ID = r.s.nextID("ex")
	exchange.CreatedAt = time.Now()
	exchange.UpdatedAt = exchange.CreatedAt
	clone := *exchange
	r.s.exchanges[exchange.ID] = &clone
	return nil
}

func (r *memExchanges) GetByID(ctx context.Context, id string) (*domain.Exchange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exchange, ok := r.s.exchanges[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *exchange
	return &clone, nil
}

func (r *memExchanges) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Exchange
	for _, exchange := range r.s.exchanges {
		if exchange.RequesterID == userID || exchange.ProviderID == userID {
			result = append(result, *exchange)
		}
	}
	return result, nil
}

func (r *memExchanges) UpdateStatus(ctx context.Context, id string, from, to domain.ExchangeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exchange, ok := r.s.exchanges[id]
	if !ok {
		return apperrors.NewNotFound("exchange", nil)
	}
	if exchange.Status != from {
		return apperrors.NewInvalidState("exchange is not in the required state", map[string]any{
			"expected": string(from),
			"current":  string(exchange.Status),
		})
	}
	exchange.Status = to
	exchange.UpdatedAt = time.Now()
	return nil
}

func (r *memExchanges) Confirm(ctx context.Context, id string, hours, agreedCredits int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exchange, ok := r.s.exchanges[id]
	if !ok {
		return apperrors.NewNotFound("exchange", nil)
	}
	if exchange.Status != domain.ExchangeStatusPending {
		return apperrors.NewInvalidState("exchange is not in the required state", nil)
	}
	exchange.Status = domain.ExchangeStatusConfirmed
	exchange.Hours = hours
	exchange.AgreedCredits = &agreedCredits
	exchange.UpdatedAt = time.Now()
	return nil
}

// Complete mirrors the SQL repository: the CAS and the settlement are
// one atomic unit, rolled back together when settlement fails.
func (r *memExchanges) Complete(ctx context.Context, id string, settle func(pgx.Tx) error) error {
	r.s.mu.Lock()
	exchange, ok := r.s.exchanges[id]
	if !ok {
		r.s.mu.Unlock()
		return apperrors.NewNotFound("exchange", nil)
	}
	if exchange.Status != domain.ExchangeStatusInProgress {
		current := exchange.Status
		r.s.mu.Unlock()
		return apperrors.NewInvalidState("exchange is not in the required state", map[string]any{
			"current": string(current),
		})
	}
	now := time.Now()
	exchange.Status = domain.ExchangeStatusCompleted
	exchange.SettledAt = &now
	exchange.UpdatedAt = now
	r.s.mu.Unlock()

	if err := settle(nil); err != nil {
		r.s.mu.Lock()
		exchange.Status = domain.ExchangeStatusInProgress
		exchange.SettledAt = nil
		r.s.mu.Unlock()
		return err
	}
	return nil
}

// ---- ratings ----

type memRatings struct{ s *memStore }

func (r *memRatings) Create(ctx context.Context, rating *domain.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.ratings {
		if existing.ExchangeID == rating.ExchangeID && existing.AuthorID == rating.AuthorID {
			return apperrors.NewConflict("rating already submitted for this exchange", nil)
		}
	}
	rating.ID = r.s.nextID("rating")
	rating.CreatedAt = time.Now()
	clone := *rating
	r.s.ratings[rating.ID] = &clone
	return nil
}

func (r *memRatings) ExistsForAuthor(ctx context.Context, exchangeID, authorID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rating := range r.s.ratings {
		if rating.ExchangeID == exchangeID && rating.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRatings) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Rating
	for _, rating := range r.s.ratings {
		if rating.RecipientID == recipientID {
			result = append(result, *rating)
		}
	}
	return result, nil
}

func (r *memRatings) AggregateForRecipient(ctx context.Context, recipientID string) (*domain.Reputation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep := &domain.Reputation{UserID: recipientID}
	total := 0
	for _, rating := range r.s.ratings {
		if rating.RecipientID == recipientID {
			rep.Count++
			total += rating.Score
		}
	}
	if rep.Count > 0 {
		rep.Average = float64(total) / float64(rep.Count)
	}
	return rep, nil
}

// ---- messages ----

type memMessages struct{ s *memStore }

func (r *memMessages) Append(ctx context.Context, message *domain.ExchangeMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	message.ID = r.s.nextID("msg")
	message.CreatedAt = time.Now()
	clone := *message
	r.s.messages = append(r.s.messages, &clone)
	return nil
}

func (r *memMessages) ListByExchange(ctx context.Context, exchangeID string, limit, offset int) ([]domain.ExchangeMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.ExchangeMessage
	for _, message := range r.s.messages {
		if message.ExchangeID == exchangeID {
			result = append(result, *message)
		}
	}
	return result, nil
}

// ---- skills ----

type memSkills struct{ s *memStore }

func (r *memSkills) List(ctx context.Context) ([]domain.Skill, error) {
	return nil, nil
}

func (r *memSkills) ListByUser(ctx context.Context, userID string) ([]domain.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.skills[userID], nil
}
