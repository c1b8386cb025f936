package service

import (
	"context"
	"strings"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
)

func (s *Service) ListProducts() []domain.Product {
	return s.catalog.Products()
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Product{}, err
	}
	return s.catalog.AddProduct(ctx, domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		Image:       req.Image,
		Description: req.Description,
		Variants:    req.Variants,
	})
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Product{}, err
	}
	p, ok := s.catalog.Product(id)
	if !ok {
		return domain.Product{}, store.ErrNotFound
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Variants != nil {
		p.Variants = *req.Variants
	}
	if err := s.catalog.UpdateProduct(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.catalog.DeleteProduct(ctx, id)
}

func (s *Service) RenameCategory(ctx context.Context, req domain.CategoryRenameRequest) (int, error) {
	if err := requireAdmin(ctx); err != nil {
		return 0, err
	}
	if err := s.validateStruct(req); err != nil {
		return 0, err
	}
	return s.catalog.UpdateCategory(ctx, req.From, req.To)
}

func (s *Service) DeleteCategory(ctx context.Context, req domain.CategoryDeleteRequest) (int, error) {
	if err := requireAdmin(ctx); err != nil {
		return 0, err
	}
	if err := s.validateStruct(req); err != nil {
		return 0, err
	}
	return s.catalog.DeleteCategory(ctx, req.Name)
}

func (s *Service) ResetProducts(ctx context.Context) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.catalog.ResetToDefaults(ctx)
}

func (s *Service) ListCampaigns() []domain.Campaign {
	return s.catalog.Campaigns()
}

func (s *Service) CreateCampaign(ctx context.Context, req domain.CampaignCreateRequest) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Campaign{}, err
	}
	return s.catalog.AddCampaign(ctx, domain.Campaign{
		Name:               strings.TrimSpace(req.Name),
		DiscountPercentage: req.DiscountPercentage,
		DurationHours:      req.DurationHours,
		ProductIDs:         req.ProductIDs,
	})
}

func (s *Service) UpdateCampaign(ctx context.Context, id string, req domain.CampaignUpdateRequest) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Campaign{}, err
	}
	c, ok := findCampaign(s.catalog.Campaigns(), id)
	if !ok {
		return domain.Campaign{}, store.ErrNotFound
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.DiscountPercentage != nil {
		c.DiscountPercentage = *req.DiscountPercentage
	}
	if req.DurationHours != nil {
		c.DurationHours = *req.DurationHours
	}
	if req.ProductIDs != nil {
		c.ProductIDs = *req.ProductIDs
	}
	return s.catalog.UpdateCampaign(ctx, c)
}

func (s *Service) DeleteCampaign(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.catalog.DeleteCampaign(ctx, id)
}

// ToggleCampaign starts or stops a campaign run. The countdown picks the
// change up through the derivation graph.
func (s *Service) ToggleCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Campaign{}, err
	}
	c, err := s.catalog.ToggleCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	s.log.WithField("campaign", id).WithField("enabled", c.Enabled).Info("campaign toggled")
	return c, nil
}

func findCampaign(campaigns []domain.Campaign, id string) (domain.Campaign, bool) {
	for _, c := range campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Campaign{}, false
}

func (s *Service) Settings() domain.Settings {
	return s.catalog.Settings()
}

func (s *Service) CreateSection(ctx context.Context, req domain.SectionRequest) (domain.Section, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Section{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Section{}, err
	}
	return s.catalog.AddSection(ctx, sectionFromRequest(0, req))
}

func (s *Service) UpdateSection(ctx context.Context, id int64, req domain.SectionRequest) (domain.Section, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Section{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Section{}, err
	}
	sec := sectionFromRequest(id, req)
	if err := s.catalog.UpdateSection(ctx, sec); err != nil {
		return domain.Section{}, err
	}
	return sec, nil
}

func (s *Service) DeleteSection(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.catalog.DeleteSection(ctx, id)
}

func sectionFromRequest(id int64, req domain.SectionRequest) domain.Section {
	return domain.Section{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		ProductCount:  req.ProductCount,
		Columns:       req.Columns,
		CardShape:     req.CardShape,
		CardAnimation: req.CardAnimation,
	}
}

func (s *Service) UpdateGrid(ctx context.Context, grid domain.GridSettings) (domain.GridSettings, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.GridSettings{}, err
	}
	if err := s.validateStruct(grid); err != nil {
		return domain.GridSettings{}, err
	}
	if err := s.catalog.UpdateGrid(ctx, grid); err != nil {
		return domain.GridSettings{}, err
	}
	return s.catalog.Settings().Grid, nil
}

// UpdateSettings applies the store name and offer placement fields that
// are present in req.
func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.Settings, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Settings{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Settings{}, err
	}
	if req.StoreName != nil {
		if err := s.catalog.UpdateStoreName(ctx, *req.StoreName); err != nil {
			return domain.Settings{}, err
		}
	}
	if req.OfferDisplay != nil {
		if err := s.catalog.SetOfferDisplay(ctx, *req.OfferDisplay); err != nil {
			return domain.Settings{}, err
		}
	}
	return s.catalog.Settings(), nil
}

func (s *Service) DeliveryCompanies() []domain.DeliveryCompany {
	return s.catalog.Settings().DeliveryCompanies
}

func (s *Service) CreateDeliveryCompany(ctx context.Context, req domain.DeliveryCompanyRequest) (domain.DeliveryCompany, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.DeliveryCompany{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.DeliveryCompany{}, err
	}
	return s.catalog.AddDeliveryCompany(ctx, domain.DeliveryCompany{Name: strings.TrimSpace(req.Name), Fee: req.Fee})
}

func (s *Service) UpdateDeliveryCompany(ctx context.Context, id int64, req domain.DeliveryCompanyRequest) (domain.DeliveryCompany, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.DeliveryCompany{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.DeliveryCompany{}, err
	}
	dc := domain.DeliveryCompany{ID: id, Name: strings.TrimSpace(req.Name), Fee: req.Fee}
	if err := s.catalog.UpdateDeliveryCompany(ctx, dc); err != nil {
		return domain.DeliveryCompany{}, err
	}
	return dc, nil
}

func (s *Service) DeleteDeliveryCompany(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.catalog.DeleteDeliveryCompany(ctx, id)
}
