// Package storetest provee implementaciones en memoria de los repositorios y del
// object storage para probar servicios y handlers sin PostgreSQL ni S3.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

// ErrForeignKey simula una violación de clave foránea
var ErrForeignKey = errors.New("foreign key violation")

type tables struct {
	brands     map[int64]models.Brand
	categories map[int64]models.Category
	products   map[int64]models.Product
	links      map[int64]models.ProductCategory
}

func (t tables) clone() tables {
	c := tables{
		brands:     make(map[int64]models.Brand, len(t.brands)),
		categories: make(map[int64]models.Category, len(t.categories)),
		products:   make(map[int64]models.Product, len(t.products)),
		links:      make(map[int64]models.ProductCategory, len(t.links)),
	}
	for k, v := range t.brands {
		c.brands[k] = v
	}
	for k, v := range t.categories {
		c.categories[k] = v
	}
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.links {
		c.links[k] = v
	}
	return c
}

// Store es una base de datos en memoria con transacciones por snapshot.
// Las secuencias de IDs no retroceden en un rollback, igual que en PostgreSQL.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data tables
	seq  int64

	failures  map[string]error
	commits   int
	rollbacks int
}

// New crea un Store vacío
func New() *Store {
	return &Store{
		data: tables{
			brands:     map[int64]models.Brand{},
			categories: map[int64]models.Category{},
			products:   map[int64]models.Product{},
			links:      map[int64]models.ProductCategory{},
		},
		failures: map[string]error{},
	}
}

// WithTransaction ejecuta fn y descarta todos sus cambios si retorna error o entra en pánico
func (s *Store) WithTransaction(ctx context.Context, fn func(q database.Querier) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	saved := s.data.clone()
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.data = saved
		s.rollbacks++
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := fn(nil); err != nil {
		rollback()
		return err
	}

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

// FailOn hace que la próxima llamada a op (p.ej. "products.Create") retorne err
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Commits retorna cuántas transacciones confirmaron
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Rollbacks retorna cuántas transacciones se descartaron
func (s *Store) Rollbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// Counts retorna la cantidad de filas de cada tabla
func (s *Store) Counts() (brands, categories, products, links int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.brands), len(s.data.categories), len(s.data.products), len(s.data.links)
}

// Links retorna todos los vínculos ordenados por ID
func (s *Store) Links() []models.ProductCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := make([]models.ProductCategory, 0, len(s.data.links))
	for _, l := range s.data.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links
}

// SeedLink inserta un vínculo sin verificar claves foráneas ni unicidad
func (s *Store) SeedLink(productID, categoryID int64) models.ProductCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	link := models.ProductCategory{ID: s.next(), ProductID: productID, CategoryID: categoryID, CreatedAt: database.Now()}
	s.data.links[link.ID] = link
	return link
}

// DropCategory borra una categoría sin aplicar ON DELETE CASCADE, dejando vínculos colgantes
func (s *Store) DropCategory(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.categories, id)
}

// DropBrand borra una marca sin aplicar ON DELETE SET NULL, dejando brand_id colgante
func (s *Store) DropBrand(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.brands, id)
}

// Brands retorna el repositorio de marcas
func (s *Store) Brands() *BrandRepository { return &BrandRepository{s} }

// Categories retorna el repositorio de categorías
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s} }

// Products retorna el repositorio de productos
func (s *Store) Products() *ProductRepository { return &ProductRepository{s} }

// ProductCategories retorna el repositorio de vínculos
func (s *Store) ProductCategories() *ProductCategoryRepository { return &ProductCategoryRepository{s} }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// fail consume el error configurado para op; se llama con mu tomado
func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, database.ErrNotFound)
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", database.ErrDuplicate, constraint)
}

func contains(value, term string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// BrandRepository es la versión en memoria de database.BrandRepository
type BrandRepository struct{ s *Store }

func (r *BrandRepository) Create(ctx context.Context, q database.Querier, brand *models.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.Create"); err != nil {
		return err
	}
	for _, b := range r.s.data.brands {
		if b.Name == brand.Name {
			return duplicate("brands_name_key")
		}
	}
	now := database.Now()
	brand.ID, brand.CreatedAt, brand.UpdatedAt = r.s.next(), now, now
	r.s.data.brands[brand.ID] = *brand
	return nil
}

func (r *BrandRepository) GetByID(ctx context.Context, q database.Querier, id int64) (*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.GetByID"); err != nil {
		return nil, err
	}
	b, ok := r.s.data.brands[id]
	if !ok {
		return nil, notFound("brand", id)
	}
	return &b, nil
}

func (r *BrandRepository) GetByName(ctx context.Context, q database.Querier, name string) (*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.GetByName"); err != nil {
		return nil, err
	}
	for _, b := range r.s.data.brands {
		if b.Name == name {
			return &b, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *BrandRepository) List(ctx context.Context, q database.Querier, skip, limit int) ([]models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.List"); err != nil {
		return nil, err
	}
	return page(r.sorted(func(models.Brand) bool { return true }), skip, limit), nil
}

func (r *BrandRepository) SearchByName(ctx context.Context, q database.Querier, name string) ([]models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.SearchByName"); err != nil {
		return nil, err
	}
	return r.sorted(func(b models.Brand) bool { return contains(b.Name, name) }), nil
}

func (r *BrandRepository) Update(ctx context.Context, q database.Querier, brand *models.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.brands[brand.ID]; !ok {
		return notFound("brand", brand.ID)
	}
	for _, b := range r.s.data.brands {
		if b.ID != brand.ID && b.Name == brand.Name {
			return duplicate("brands_name_key")
		}
	}
	brand.UpdatedAt = database.Now()
	r.s.data.brands[brand.ID] = *brand
	return nil
}

// Delete aplica ON DELETE SET NULL sobre products.brand_id
func (r *BrandRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("brands.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.brands[id]; !ok {
		return notFound("brand", id)
	}
	delete(r.s.data.brands, id)
	for pid, p := range r.s.data.products {
		if p.BrandID != nil && *p.BrandID == id {
			p.BrandID = nil
			r.s.data.products[pid] = p
		}
	}
	return nil
}

func (r *BrandRepository) sorted(keep func(models.Brand) bool) []models.Brand {
	out := make([]models.Brand, 0)
	for _, b := range r.s.data.brands {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CategoryRepository es la versión en memoria de database.CategoryRepository
type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) Create(ctx context.Context, q database.Querier, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.Create"); err != nil {
		return err
	}
	for _, c := range r.s.data.categories {
		if c.Name == category.Name {
			return duplicate("categories_name_key")
		}
	}
	now := database.Now()
	category.ID, category.CreatedAt, category.UpdatedAt = r.s.next(), now, now
	r.s.data.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, q database.Querier, id int64) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func (r *CategoryRepository) GetByIDs(ctx context.Context, q database.Querier, ids []int64) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.GetByIDs"); err != nil {
		return nil, err
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := r.sorted(func(c models.Category) bool { return wanted[c.ID] })
	// El orden de la base no está garantizado; se invierte para no depender de él
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, q database.Querier, name string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.GetByName"); err != nil {
		return nil, err
	}
	for _, c := range r.s.data.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *CategoryRepository) List(ctx context.Context, q database.Querier, skip, limit int) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.List"); err != nil {
		return nil, err
	}
	return page(r.sorted(func(models.Category) bool { return true }), skip, limit), nil
}

func (r *CategoryRepository) SearchByName(ctx context.Context, q database.Querier, name string) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.SearchByName"); err != nil {
		return nil, err
	}
	return r.sorted(func(c models.Category) bool { return contains(c.Name, name) }), nil
}

func (r *CategoryRepository) Update(ctx context.Context, q database.Querier, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.categories[category.ID]; !ok {
		return notFound("category", category.ID)
	}
	for _, c := range r.s.data.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return duplicate("categories_name_key")
		}
	}
	category.UpdatedAt = database.Now()
	r.s.data.categories[category.ID] = *category
	return nil
}

// Delete aplica ON DELETE CASCADE sobre product_categories
func (r *CategoryRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("categories.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.categories[id]; !ok {
		return notFound("category", id)
	}
	delete(r.s.data.categories, id)
	for lid, l := range r.s.data.links {
		if l.CategoryID == id {
			delete(r.s.data.links, lid)
		}
	}
	return nil
}

func (r *CategoryRepository) sorted(keep func(models.Category) bool) []models.Category {
	out := make([]models.Category, 0)
	for _, c := range r.s.data.categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProductRepository es la versión en memoria de database.ProductRepository
type ProductRepository struct{ s *Store }

func (r *ProductRepository) Create(ctx context.Context, q database.Querier, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Create"); err != nil {
		return err
	}
	if err := r.checkConstraints(product); err != nil {
		return err
	}
	now := database.Now()
	product.ID, product.CreatedAt, product.UpdatedAt = r.s.next(), now, now
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return &p, nil
}

func (r *ProductRepository) GetByBarcode(ctx context.Context, q database.Querier, barcode string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.GetByBarcode"); err != nil {
		return nil, err
	}
	for _, p := range r.s.data.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return &p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *ProductRepository) List(ctx context.Context, q database.Querier, filter models.ProductFilter) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.List"); err != nil {
		return nil, err
	}
	out := r.sorted(func(p models.Product) bool {
		if filter.Status != nil && p.Status != *filter.Status {
			return false
		}
		if filter.BrandID != nil && (p.BrandID == nil || *p.BrandID != *filter.BrandID) {
			return false
		}
		if filter.MeasureType != nil && (p.MeasureType == nil || *p.MeasureType != *filter.MeasureType) {
			return false
		}
		if filter.CategoryID != nil && !r.linked(p.ID, *filter.CategoryID) {
			return false
		}
		return true
	})
	return page(out, filter.Skip, filter.Limit), nil
}

func (r *ProductRepository) Search(ctx context.Context, q database.Querier, search models.ProductSearch) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Search"); err != nil {
		return nil, err
	}
	return r.sorted(func(p models.Product) bool {
		if search.Name != "" && !contains(p.Name, search.Name) {
			return false
		}
		if search.Barcode != "" && (p.Barcode == nil || !contains(*p.Barcode, search.Barcode)) {
			return false
		}
		return true
	}), nil
}

func (r *ProductRepository) Update(ctx context.Context, q database.Querier, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Update"); err != nil {
		return err
	}
	if _, ok := r.s.data.products[product.ID]; !ok {
		return notFound("product", product.ID)
	}
	if err := r.checkConstraints(product); err != nil {
		return err
	}
	product.UpdatedAt = database.Now()
	r.s.data.products[product.ID] = *product
	return nil
}

// Delete aplica ON DELETE CASCADE sobre product_categories
func (r *ProductRepository) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.products[id]; !ok {
		return notFound("product", id)
	}
	delete(r.s.data.products, id)
	for lid, l := range r.s.data.links {
		if l.ProductID == id {
			delete(r.s.data.links, lid)
		}
	}
	return nil
}

func (r *ProductRepository) checkConstraints(product *models.Product) error {
	if product.Barcode != nil {
		for _, p := range r.s.data.products {
			if p.ID != product.ID && p.Barcode != nil && *p.Barcode == *product.Barcode {
				return duplicate("products_barcode_key")
			}
		}
	}
	if product.BrandID != nil {
		if _, ok := r.s.data.brands[*product.BrandID]; !ok {
			return fmt.Errorf("products_brand_id_fkey: %w", ErrForeignKey)
		}
	}
	return nil
}

func (r *ProductRepository) linked(productID, categoryID int64) bool {
	for _, l := range r.s.data.links {
		if l.ProductID == productID && l.CategoryID == categoryID {
			return true
		}
	}
	return false
}

func (r *ProductRepository) sorted(keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range r.s.data.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProductCategoryRepository es la versión en memoria de database.ProductCategoryRepository
type ProductCategoryRepository struct{ s *Store }

func (r *ProductCategoryRepository) Create(ctx context.Context, q database.Querier, link *models.ProductCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("links.Create"); err != nil {
		return err
	}
	if _, ok := r.s.data.products[link.ProductID]; !ok {
		return fmt.Errorf("product_categories_product_id_fkey: %w", ErrForeignKey)
	}
	if _, ok := r.s.data.categories[link.CategoryID]; !ok {
		return fmt.Errorf("product_categories_category_id_fkey: %w", ErrForeignKey)
	}
	for _, l := range r.s.data.links {
		if l.ProductID == link.ProductID && l.CategoryID == link.CategoryID {
			return duplicate("product_categories_pair_key")
		}
	}
	link.ID, link.CreatedAt = r.s.next(), database.Now()
	r.s.data.links[link.ID] = *link
	return nil
}

func (r *ProductCategoryRepository) ListByProduct(ctx context.Context, q database.Querier, productID int64) ([]models.ProductCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("links.ListByProduct"); err != nil {
		return nil, err
	}
	out := make([]models.ProductCategory, 0)
	for _, l := range r.s.data.links {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductCategoryRepository) DeleteByProduct(ctx context.Context, q database.Querier, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("links.DeleteByProduct"); err != nil {
		return err
	}
	for lid, l := range r.s.data.links {
		if l.ProductID == productID {
			delete(r.s.data.links, lid)
		}
	}
	return nil
}
