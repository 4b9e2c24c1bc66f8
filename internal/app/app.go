package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/glabrego/carta-cli/internal/menu"
)

type MenuClient interface {
	GetBusinessBySlug(ctx context.Context, slug string) (menu.Business, []menu.Product, error)
	ListProducts(ctx context.Context) ([]menu.Product, error)
	VerifyUser(ctx context.Context, userName, password string) (menu.User, error)
}

type Repository interface {
	SaveBusiness(ctx context.Context, business menu.Business) error
	LoadBusiness(ctx context.Context, slug string) (menu.Business, time.Time, error)
	SaveProducts(ctx context.Context, businessID string, products []menu.Product) error
	ListProducts(ctx context.Context, businessID string) ([]menu.Product, error)
}

// Catalog is one business with its products in API order.
type Catalog struct {
	Business  menu.Business
	Products  []menu.Product
	FetchedAt time.Time
}

// Session is a signed-in user. The ID is local to this process.
type Session struct {
	ID        uuid.UUID
	User      menu.User
	StartedAt time.Time
}

type Service struct {
	client MenuClient
	repo   Repository
	log    *log.Helper
	now    func() time.Time
}

func NewService(client MenuClient, repo Repository, logger log.Logger) *Service {
	return &Service{
		client: client,
		repo:   repo,
		log:    log.NewHelper(log.With(logger, "module", "app/service")),
		now:    time.Now,
	}
}

// Refresh fetches the business and its products, stores them and returns the
// cached copy.
func (s *Service) Refresh(ctx context.Context, slug string) (Catalog, error) {
	business, products, err := s.client.GetBusinessBySlug(ctx, slug)
	if err != nil {
		return Catalog{}, fmt.Errorf("fetch business from menu api: %w", err)
	}

	// Older backends answer the business without embedding its products.
	if products == nil {
		all, err := s.client.ListProducts(ctx)
		if err != nil {
			return Catalog{}, fmt.Errorf("fetch products from menu api: %w", err)
		}
		products = productsOf(all, business.ID)
	}

	if err := s.repo.SaveBusiness(ctx, business); err != nil {
		return Catalog{}, fmt.Errorf("save business to cache: %w", err)
	}
	if err := s.repo.SaveProducts(ctx, business.ID, products); err != nil {
		return Catalog{}, fmt.Errorf("save products to cache: %w", err)
	}
	s.log.WithContext(ctx).Infow("msg", "menu refreshed", "slug", slug, "products", len(products))

	return s.LoadCached(ctx, slug)
}

func (s *Service) LoadCached(ctx context.Context, slug string) (Catalog, error) {
	business, fetchedAt, err := s.repo.LoadBusiness(ctx, slug)
	if err != nil {
		return Catalog{}, fmt.Errorf("load business from cache: %w", err)
	}
	products, err := s.repo.ListProducts(ctx, business.ID)
	if err != nil {
		return Catalog{}, fmt.Errorf("load products from cache: %w", err)
	}
	return Catalog{Business: business, Products: products, FetchedAt: fetchedAt}, nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, userName, password string) (Session, error) {
	if userName == "" || password == "" {
		return Session{}, menu.ErrInvalidCredentials
	}
	user, err := s.client.VerifyUser(ctx, userName, password)
	if err != nil {
		if errors.Is(err, menu.ErrInvalidCredentials) {
			s.log.WithContext(ctx).Warnw("msg", "sign in rejected", "user", userName)
			return Session{}, err
		}
		return Session{}, fmt.Errorf("verify user: %w", err)
	}
	session := Session{ID: uuid.New(), User: user, StartedAt: s.now()}
	s.log.WithContext(ctx).Infow("msg", "signed in", "user", user.UserName, "session", session.ID.String())
	return session, nil
}

func productsOf(all []menu.Product, businessID string) []menu.Product {
	out := make([]menu.Product, 0, len(all))
	for _, p := range all {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out
}
