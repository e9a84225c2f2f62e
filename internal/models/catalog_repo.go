package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type CatalogRepo interface {
	FetchPrinterBrands(ctx context.Context) ([]PrinterBrand, error)
	AddPrinterBrand(ctx context.Context, in PrinterBrandInput) (*PrinterBrand, error)
	UpdatePrinterBrand(ctx context.Context, id string, in PrinterBrandInput) (*PrinterBrand, error)
	DeletePrinterBrand(ctx context.Context, id string) (bool, error)

	AddPrinterModel(ctx context.Context, in PrinterModelInput) (*PrinterModel, error)
	UpdatePrinterModel(ctx context.Context, id string, in PrinterModelInput) (*PrinterModel, error)
	DeletePrinterModel(ctx context.Context, id string) (bool, error)

	FetchProblemCategories(ctx context.Context) ([]ProblemCategory, error)
	AddProblemCategory(ctx context.Context, in ProblemCategoryInput) (*ProblemCategory, error)
	UpdateProblemCategory(ctx context.Context, id string, in ProblemCategoryInput) (*ProblemCategory, error)
	DeleteProblemCategory(ctx context.Context, id string) (bool, error)

	AddProblem(ctx context.Context, in ProblemInput) (*Problem, error)
	UpdateProblem(ctx context.Context, id string, in ProblemInput) (*Problem, error)
	DeleteProblem(ctx context.Context, id string) (bool, error)

	FetchGalleryImages(ctx context.Context) ([]GalleryImage, error)
	GetGalleryImage(ctx context.Context, id string) (*GalleryImage, error)
	AddGalleryImage(ctx context.Context, in GalleryImageInput) (*GalleryImage, error)
	UpdateGalleryImage(ctx context.Context, id string, in GalleryImageInput) (*GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id string) (bool, error)

	FetchTechnicians(ctx context.Context) ([]Technician, error)
	AddTechnician(ctx context.Context, in TechnicianInput) (*Technician, error)
	UpdateTechnician(ctx context.Context, id string, in TechnicianInput) (*Technician, error)
	DeleteTechnician(ctx context.Context, id string) (bool, error)
}

func (su *SupabaseRepo) FetchPrinterBrands(ctx context.Context) ([]PrinterBrand, error) {
	var brands []PrinterBrand
	if err := su.selectRows(PrinterBrandsTable, "*, printer_models(*)", "name", &brands); err != nil {
		return nil, err
	}
	for i := range brands {
		if brands[i].Models == nil {
			brands[i].Models = []PrinterModel{}
		}
	}
	return brands, nil
}

func (su *SupabaseRepo) AddPrinterBrand(ctx context.Context, in PrinterBrandInput) (*PrinterBrand, error) {
	return insertRow[PrinterBrand](su, PrinterBrandsTable, in.Row())
}

func (su *SupabaseRepo) UpdatePrinterBrand(ctx context.Context, id string, in PrinterBrandInput) (*PrinterBrand, error) {
	return updateRow[PrinterBrand](su, PrinterBrandsTable, id, in.Row())
}

func (su *SupabaseRepo) DeletePrinterBrand(ctx context.Context, id string) (bool, error) {
	return su.deleteRow(PrinterBrandsTable, id)
}

func (su *SupabaseRepo) AddPrinterModel(ctx context.Context, in PrinterModelInput) (*PrinterModel, error) {
	return insertRow[PrinterModel](su, PrinterModelsTable, in.Row())
}

func (su *SupabaseRepo) UpdatePrinterModel(ctx context.Context, id string, in PrinterModelInput) (*PrinterModel, error) {
	return updateRow[PrinterModel](su, PrinterModelsTable, id, in.Row())
}

func (su *SupabaseRepo) DeletePrinterModel(ctx context.Context, id string) (bool, error) {
	return su.deleteRow(PrinterModelsTable, id)
}

func (su *SupabaseRepo) FetchProblemCategories(ctx context.Context) ([]ProblemCategory, error) {
	var categories []ProblemCategory
	if err := su.selectRows(ProblemCategoriesTable, "*, problems(*)", "name", &categories); err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Problems == nil {
			categories[i].Problems = []Problem{}
		}
	}
	return categories, nil
}

func (su *SupabaseRepo) AddProblemCategory(ctx context.Context, in ProblemCategoryInput) (*ProblemCategory, error) {
	return insertRow[ProblemCategory](su, ProblemCategoriesTable, in.Row())
}

func (su *SupabaseRepo) UpdateProblemCategory(ctx context.Context, id string, in ProblemCategoryInput) (*ProblemCategory, error) {
	return updateRow[ProblemCategory](su, ProblemCategoriesTable, id, in.Row())
}

func (su *SupabaseRepo) DeleteProblemCategory(ctx context.Context, id string) (bool, error) {
	return su.deleteRow(ProblemCategoriesTable, id)
}

func (su *SupabaseRepo) AddProblem(ctx context.Context, in ProblemInput) (*Problem, error) {
	return insertRow[Problem](su, ProblemsTable, in.Row())
}

func (su *SupabaseRepo) UpdateProblem(ctx context.Context, id string, in ProblemInput) (*Problem, error) {
	return updateRow[Problem](su, ProblemsTable, id, in.Row())
}

func (su *SupabaseRepo) DeleteProblem(ctx context.Context, id string) (bool, error) {
	return su.deleteRow(ProblemsTable, id)
}

func (su *SupabaseRepo) FetchGalleryImages(ctx context.Context) ([]GalleryImage, error) {
	var images []GalleryImage
	if err := su.selectRows(GalleryImagesTable, "*", "created_at", &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (su *SupabaseRepo) GetGalleryImage(ctx context.Context, id string) (*GalleryImage, error) {
	raw, _, err := su.supabaseClient.From(GalleryImagesTable).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get gallery image: %w", err)
	}
	return firstRow[GalleryImage](raw)
}

func (su *SupabaseRepo) AddGalleryImage(ctx context.Context, in GalleryImageInput) (*GalleryImage, error) {
	return insertRow[GalleryImage](su, GalleryImagesTable, in.Row())
}

func (su *SupabaseRepo) UpdateGalleryImage(ctx context.Context, id string, in GalleryImageInput) (*GalleryImage, error) {
	return updateRow[GalleryImage](su, GalleryImagesTable, id, in.Row())
}

func (su *SupabaseRepo) DeleteGalleryImage(ctx context.Context, id string) (bool, error) {
	return su.deleteRow(GalleryImagesTable, id)
}

func (su *SupabaseRepo) FetchTechnicians(ctx context.Context) ([]Technician, error) {
	var technicians []Technician
	if err := su.selectRows(TechniciansTable, "*", "name", &technicians); err != nil {
		return nil, err
	}
	return technicians, nil
}

func (su *SupabaseRepo) AddTechnician(ctx context.Context, in TechnicianInput) (*Technician, error) {
	return insertRow[Technician](su, TechniciansTable, in.Row())
}

func (su *SupabaseRepo) UpdateTechnician(ctx context.Context, id string, in TechnicianInput) (*Technician, error) {
	return updateRow[Technician](su, TechniciansTable, id, in.Row())
}

func (su *SupabaseRepo) DeleteTechnician(ctx context.Context, id string) (bool, error) {
	return su.deleteRow(TechniciansTable, id)
}

func (su *SupabaseRepo) selectRows(table, columns, orderBy string, dst interface{}) error {
	raw, _, err := su.supabaseClient.From(table).
		Select(columns, "", false).
		Order(orderBy, &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", table, err)
	}
	return nil
}

func insertRow[T any](su *SupabaseRepo, table string, row map[string]interface{}) (*T, error) {
	row["id"] = uuid.New().String()

	raw, _, err := su.supabaseClient.From(table).
		Insert(row, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return firstRow[T](raw)
}

func updateRow[T any](su *SupabaseRepo, table, id string, row map[string]interface{}) (*T, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	raw, _, err := su.supabaseClient.From(table).
		Update(row, "", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", table, id, err)
	}
	return firstRow[T](raw)
}

func (su *SupabaseRepo) deleteRow(table, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf("%w: id is required", ErrValidation)
	}

	raw, count, err := su.supabaseClient.From(table).
		Delete("", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return false, fmt.Errorf("failed to unmarshal deleted %s rows: %w", table, err)
	}
	return count > 0 || len(rows) > 0, nil
}

// firstRow decodes the single row PostgREST returns as an array.
func firstRow[T any](raw []byte) (*T, error) {
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}
