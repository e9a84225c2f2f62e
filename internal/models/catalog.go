package models

import "strings"

const (
	PrinterBrandsTable     = "printer_brands"
	PrinterModelsTable     = "printer_models"
	ProblemCategoriesTable = "problem_categories"
	ProblemsTable          = "problems"
	GalleryImagesTable     = "gallery_images"
	TechniciansTable       = "technicians"
)

type PrinterModel struct {
	ID      string `json:"id"`
	BrandID string `json:"brand_id"`
	Name    string `json:"name"`
}

type PrinterBrand struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	LogoURL *string        `json:"logo_url,omitempty"`
	Models  []PrinterModel `json:"printer_models"`
}

type Problem struct {
	ID            string  `json:"id"`
	CategoryID    string  `json:"category_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	EstimatedCost *Amount `json:"estimated_cost,omitempty"`
}

type ProblemCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        *string   `json:"icon,omitempty"`
	Description *string   `json:"description,omitempty"`
	Problems    []Problem `json:"problems"`
}

type GalleryImage struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	ImageURL    string  `json:"image_url"`
	PublicID    *string `json:"public_id,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type Technician struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          *string `json:"email,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	Rating         float64 `json:"rating"`
	IsActive       bool    `json:"is_active"`
}

type PrinterBrandInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
}

func (in PrinterBrandInput) Row() map[string]interface{} {
	return map[string]interface{}{
		"name":     strings.TrimSpace(in.Name),
		"logo_url": optional(in.LogoURL),
	}
}

type PrinterModelInput struct {
	BrandID string `json:"brand_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=100"`
}

func (in PrinterModelInput) Row() map[string]interface{} {
	return map[string]interface{}{
		"brand_id": in.BrandID,
		"name":     strings.TrimSpace(in.Name),
	}
}

type ProblemCategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Icon        string `json:"icon" validate:"max=50"`
	Description string `json:"description"`
}

func (in ProblemCategoryInput) Row() map[string]interface{} {
	return map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"icon":        optional(in.Icon),
		"description": optional(in.Description),
	}
}

type ProblemInput struct {
	CategoryID    string `json:"category_id" validate:"required"`
	Name          string `json:"name" validate:"required,max=150"`
	Description   string `json:"description"`
	EstimatedCost string `json:"estimated_cost" validate:"omitempty,numeric"`
}

func (in ProblemInput) Row() map[string]interface{} {
	return map[string]interface{}{
		"category_id":    in.CategoryID,
		"name":           strings.TrimSpace(in.Name),
		"description":    optional(in.Description),
		"estimated_cost": optional(in.EstimatedCost),
	}
}

type GalleryImageInput struct {
	Title       string `json:"title" validate:"required,max=150"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"required"`
	Category    string `json:"category" validate:"max=50"`
	PublicID    string `json:"-"`
}

func (in GalleryImageInput) Row() map[string]interface{} {
	return map[string]interface{}{
		"title":       strings.TrimSpace(in.Title),
		"description": optional(in.Description),
		"image_url":   in.ImageURL,
		"public_id":   optional(in.PublicID),
		"category":    optional(in.Category),
	}
}

type TechnicianInput struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Phone          string  `json:"phone" validate:"required,max=30"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Specialization string  `json:"specialization"`
	Rating         float64 `json:"rating" validate:"gte=0,lte=5"`
	IsActive       *bool   `json:"is_active"`
}

func (in TechnicianInput) Row() map[string]interface{} {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return map[string]interface{}{
		"name":           strings.TrimSpace(in.Name),
		"phone":          strings.TrimSpace(in.Phone),
		"email":          optional(in.Email),
		"specialization": optional(in.Specialization),
		"rating":         in.Rating,
		"is_active":      active,
	}
}

// optional maps blank strings to SQL NULL.
func optional(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.TrimSpace(s)
}
