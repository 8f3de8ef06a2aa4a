package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aishe-survey-api/internal/models"
)

// ReferenceRepository serves the read-only master tables: departments
// and the category/subcategory/gender axes. The survey core never
// mutates these.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Departments lists every active department in display order.
func (r *ReferenceRepository) Departments(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, hod_name, offers_ug, offers_pg, active, display_order
FROM departments WHERE active = TRUE ORDER BY display_order, name`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindDepartment returns one department row by id.
func (r *ReferenceRepository) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, hod_name, offers_ug, offers_pg, active, display_order
FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Categories lists the category master rows in display order.
func (r *ReferenceRepository) Categories(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, name, display_order FROM categories ORDER BY display_order`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Subcategories lists the subcategory master rows in display order.
func (r *ReferenceRepository) Subcategories(ctx context.Context) ([]models.Subcategory, error) {
	const query = `SELECT id, name, display_order FROM subcategories ORDER BY display_order`
	var subcategories []models.Subcategory
	if err := r.db.SelectContext(ctx, &subcategories, query); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return subcategories, nil
}

// Genders lists the gender master rows in display order.
func (r *ReferenceRepository) Genders(ctx context.Context) ([]models.Gender, error) {
	const query = `SELECT id, code, name, display_order FROM genders ORDER BY display_order`
	var genders []models.Gender
	if err := r.db.SelectContext(ctx, &genders, query); err != nil {
		return nil, fmt.Errorf("list genders: %w", err)
	}
	return genders, nil
}

// ReferenceSet loads the three classification axes in one call for
// completeness evaluation.
func (r *ReferenceRepository) ReferenceSet(ctx context.Context) (*models.ReferenceSet, error) {
	categories, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	subcategories, err := r.Subcategories(ctx)
	if err != nil {
		return nil, err
	}
	genders, err := r.Genders(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ReferenceSet{Categories: categories, Subcategories: subcategories, Genders: genders}, nil
}
