package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/sweetcrust/internal/hash"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/testutil"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
	"github.com/Skotchmaster/sweetcrust/internal/util"
)

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type fakeIndex struct {
	indexed   map[uint]string
	deleted   []uint
	searchErr error
	hits      []models.Product
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	if f.indexed == nil {
		f.indexed = map[uint]string{}
	}
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ util.Page) ([]models.Product, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

type recordingImages struct {
	mu      sync.Mutex
	deleted []string
}

func (r *recordingImages) Delete(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, ref)
	return nil
}

type testEnv struct {
	Repo    *repo.GormRepo
	Events  *recordingPublisher
	Index   *fakeIndex
	Images  *recordingImages
	Auth    *AuthService
	Catalog *CatalogService
	Orders  *OrderService
	Msgs    *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(testutil.NewDB(t))
	pub := &recordingPublisher{}
	ix := &fakeIndex{}
	images := &recordingImages{}

	return &testEnv{
		Repo:   r,
		Events: pub,
		Index:  ix,
		Images: images,
		Auth: &AuthService{
			Repo:   r,
			Hasher: hash.Hasher{Cost: bcrypt.MinCost},
			Tokens: tokens.NewIssuer([]byte("test-jwt-secret"), 0),
			Events: pub,
		},
		Catalog: &CatalogService{Repo: r, Events: pub, Index: ix, Images: images},
		Orders:  &OrderService{Repo: r, Events: pub},
		Msgs:    &MessageService{Repo: r, Events: pub},
	}
}

// identity creates a user row so that created_by references hold.
func (e *testEnv) identity(t *testing.T, email string, role models.Role) *tokens.Identity {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, e.Repo.CreateUser(context.Background(), u))
	return &tokens.Identity{ID: u.ID, Role: u.Role, Name: u.Name}
}

func (e *testEnv) product(t *testing.T, admin *tokens.Identity, name, price string) *models.Product {
	t.Helper()
	p, err := e.Catalog.Create(context.Background(), admin, ProductInput{Name: strPtr(name), Price: decPtr(price)})
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var errBrokerDown = errors.New("broker down")
