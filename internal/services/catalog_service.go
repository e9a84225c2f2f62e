package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshua-takyi/printer-admin/internal/helpers"
	"github.com/joshua-takyi/printer-admin/internal/models"
)

// CatalogService applies admin edits to the reference lists and refreshes the
// affected dashboard collection after each successful write.
type CatalogService struct {
	repo      models.CatalogRepo
	dashboard *DashboardService
	assets    helpers.AssetStore
	logger    *slog.Logger
}

// NewCatalogService builds the service; assets may be nil, in which case gallery
// image URLs are stored as given.
func NewCatalogService(repo models.CatalogRepo, dashboard *DashboardService, assets helpers.AssetStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{repo: repo, dashboard: dashboard, assets: assets, logger: logger}
}

func validateInput(in interface{}) error {
	if err := models.Validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", models.ErrValidation)
	}
	return nil
}

func (cs *CatalogService) refresh(ctx context.Context, entity string, reload func(context.Context) error) {
	if err := reload(ctx); err != nil {
		cs.logger.Warn("Reload after catalog change failed", "entity", entity, "error", err)
	}
}

func create[In any, Out any](ctx context.Context, cs *CatalogService, entity string, in In, add func(context.Context, In) (*Out, error), reload func(context.Context) error) (*Out, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	out, err := add(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", entity, err)
	}
	cs.refresh(ctx, entity, reload)
	return out, nil
}

func update[In any, Out any](ctx context.Context, cs *CatalogService, entity, id string, in In, upd func(context.Context, string, In) (*Out, error), reload func(context.Context) error) (*Out, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	out, err := upd(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", entity, err)
	}
	cs.refresh(ctx, entity, reload)
	return out, nil
}

func remove(ctx context.Context, cs *CatalogService, entity, id string, del func(context.Context, string) (bool, error), reload func(context.Context) error) error {
	if err := requireID(id); err != nil {
		return err
	}
	deleted, err := del(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	if !deleted {
		return fmt.Errorf("%s %s: %w", entity, id, models.ErrNotFound)
	}
	cs.refresh(ctx, entity, reload)
	return nil
}

func (cs *CatalogService) AddPrinterBrand(ctx context.Context, in models.PrinterBrandInput) (*models.PrinterBrand, error) {
	return create(ctx, cs, "printer brand", in, cs.repo.AddPrinterBrand, cs.dashboard.ReloadBrands)
}

func (cs *CatalogService) UpdatePrinterBrand(ctx context.Context, id string, in models.PrinterBrandInput) (*models.PrinterBrand, error) {
	return update(ctx, cs, "printer brand", id, in, cs.repo.UpdatePrinterBrand, cs.dashboard.ReloadBrands)
}

func (cs *CatalogService) DeletePrinterBrand(ctx context.Context, id string) error {
	return remove(ctx, cs, "printer brand", id, cs.repo.DeletePrinterBrand, cs.dashboard.ReloadBrands)
}

// Printer models are listed under their brand, so changes reload brands.
func (cs *CatalogService) AddPrinterModel(ctx context.Context, in models.PrinterModelInput) (*models.PrinterModel, error) {
	return create(ctx, cs, "printer model", in, cs.repo.AddPrinterModel, cs.dashboard.ReloadBrands)
}

func (cs *CatalogService) UpdatePrinterModel(ctx context.Context, id string, in models.PrinterModelInput) (*models.PrinterModel, error) {
	return update(ctx, cs, "printer model", id, in, cs.repo.UpdatePrinterModel, cs.dashboard.ReloadBrands)
}

func (cs *CatalogService) DeletePrinterModel(ctx context.Context, id string) error {
	return remove(ctx, cs, "printer model", id, cs.repo.DeletePrinterModel, cs.dashboard.ReloadBrands)
}

func (cs *CatalogService) AddProblemCategory(ctx context.Context, in models.ProblemCategoryInput) (*models.ProblemCategory, error) {
	return create(ctx, cs, "problem category", in, cs.repo.AddProblemCategory, cs.dashboard.ReloadCategories)
}

func (cs *CatalogService) UpdateProblemCategory(ctx context.Context, id string, in models.ProblemCategoryInput) (*models.ProblemCategory, error) {
	return update(ctx, cs, "problem category", id, in, cs.repo.UpdateProblemCategory, cs.dashboard.ReloadCategories)
}

func (cs *CatalogService) DeleteProblemCategory(ctx context.Context, id string) error {
	return remove(ctx, cs, "problem category", id, cs.repo.DeleteProblemCategory, cs.dashboard.ReloadCategories)
}

func (cs *CatalogService) AddProblem(ctx context.Context, in models.ProblemInput) (*models.Problem, error) {
	return create(ctx, cs, "problem", in, cs.repo.AddProblem, cs.dashboard.ReloadCategories)
}

func (cs *CatalogService) UpdateProblem(ctx context.Context, id string, in models.ProblemInput) (*models.Problem, error) {
	return update(ctx, cs, "problem", id, in, cs.repo.UpdateProblem, cs.dashboard.ReloadCategories)
}

func (cs *CatalogService) DeleteProblem(ctx context.Context, id string) error {
	return remove(ctx, cs, "problem", id, cs.repo.DeleteProblem, cs.dashboard.ReloadCategories)
}

// AddGalleryImage re-hosts the image on the asset store when one is configured.
func (cs *CatalogService) AddGalleryImage(ctx context.Context, in models.GalleryImageInput) (*models.GalleryImage, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	hosted, err := cs.hostImage(ctx, &in)
	if err != nil {
		return nil, err
	}

	img, err := cs.repo.AddGalleryImage(ctx, in)
	if err != nil {
		if hosted {
			cs.discardAsset(ctx, in.PublicID)
		}
		return nil, fmt.Errorf("failed to add gallery image: %w", err)
	}
	cs.refresh(ctx, "gallery image", cs.dashboard.ReloadGallery)
	return img, nil
}

func (cs *CatalogService) UpdateGalleryImage(ctx context.Context, id string, in models.GalleryImageInput) (*models.GalleryImage, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	current, err := cs.repo.GetGalleryImage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery image: %w", err)
	}

	hosted := false
	if current.ImageURL == in.ImageURL && current.PublicID != nil {
		in.PublicID = *current.PublicID
	} else if hosted, err = cs.hostImage(ctx, &in); err != nil {
		return nil, err
	}

	img, err := cs.repo.UpdateGalleryImage(ctx, id, in)
	if err != nil {
		if hosted {
			cs.discardAsset(ctx, in.PublicID)
		}
		return nil, fmt.Errorf("failed to update gallery image: %w", err)
	}
	if current.PublicID != nil && *current.PublicID != in.PublicID {
		cs.discardAsset(ctx, *current.PublicID)
	}
	cs.refresh(ctx, "gallery image", cs.dashboard.ReloadGallery)
	return img, nil
}

func (cs *CatalogService) DeleteGalleryImage(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	current, err := cs.repo.GetGalleryImage(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load gallery image: %w", err)
	}
	if err := remove(ctx, cs, "gallery image", id, cs.repo.DeleteGalleryImage, cs.dashboard.ReloadGallery); err != nil {
		return err
	}
	if current.PublicID != nil {
		cs.discardAsset(ctx, *current.PublicID)
	}
	return nil
}

func (cs *CatalogService) AddTechnician(ctx context.Context, in models.TechnicianInput) (*models.Technician, error) {
	return create(ctx, cs, "technician", in, cs.repo.AddTechnician, cs.dashboard.ReloadTechnicians)
}

func (cs *CatalogService) UpdateTechnician(ctx context.Context, id string, in models.TechnicianInput) (*models.Technician, error) {
	return update(ctx, cs, "technician", id, in, cs.repo.UpdateTechnician, cs.dashboard.ReloadTechnicians)
}

func (cs *CatalogService) DeleteTechnician(ctx context.Context, id string) error {
	return remove(ctx, cs, "technician", id, cs.repo.DeleteTechnician, cs.dashboard.ReloadTechnicians)
}

// hostImage uploads in.ImageURL and rewrites it to the hosted copy. It reports
// whether an upload happened.
func (cs *CatalogService) hostImage(ctx context.Context, in *models.GalleryImageInput) (bool, error) {
	if cs.assets == nil {
		in.PublicID = ""
		return false, nil
	}
	asset, err := cs.assets.Upload(ctx, in.ImageURL, helpers.GalleryFolder)
	if err != nil {
		return false, fmt.Errorf("failed to host gallery image: %w", err)
	}
	in.ImageURL = asset.URL
	in.PublicID = asset.PublicID
	return true, nil
}

func (cs *CatalogService) discardAsset(ctx context.Context, publicID string) {
	if cs.assets == nil || publicID == "" {
		return
	}
	if err := cs.assets.Destroy(ctx, publicID); err != nil {
		cs.logger.Warn("Failed to delete hosted image", "public_id", publicID, "error", err)
	}
}
