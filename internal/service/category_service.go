package service

import (
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// maxCategoryDepth 上级链的最大层数，超过视为数据异常
const maxCategoryDepth = 16

// CategoryService 分类维护
type CategoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategoryInput 创建与更新共用
type CreateCategoryInput struct {
	ParentID  *uint
	Slug      string
	NameJSON  map[string]interface{}
	Icon      string
	IsActive  *bool
	SortOrder int
}

func (s *CategoryService) ListPublic() ([]models.Category, error) {
	return s.repo.List(repository.CategoryListFilter{OnlyActive: true})
}

func (s *CategoryService) ListAdmin() ([]models.Category, error) {
	return s.repo.List(repository.CategoryListFilter{})
}

func (s *CategoryService) Create(input CreateCategoryInput) (*models.Category, error) {
	category := &models.Category{IsActive: true}
	if err := s.apply(category, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(id uint, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if err := s.apply(category, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 分类下仍有商品时拒绝
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(id)
}

func (s *CategoryService) apply(category *models.Category, input CreateCategoryInput) error {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := normalizeMultiLangJSON(input.NameJSON)
	if slug == "" || !hasAnyText(name) {
		return ErrInvalidInput
	}
	if err := s.checkParent(category.ID, input.ParentID); err != nil {
		return err
	}
	taken, err := s.repo.SlugTaken(slug, category.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugExists
	}

	category.ParentID = input.ParentID
	category.Slug = slug
	category.NameJSON = name
	category.Icon = strings.TrimSpace(input.Icon)
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	return nil
}

// checkParent 上级必须存在，且沿上级链向上不能回到自身
func (s *CategoryService) checkParent(selfID uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	next := *parentID
	for depth := 0; next != 0; depth++ {
		if depth >= maxCategoryDepth || (selfID != 0 && next == selfID) {
			return ErrInvalidInput
		}
		parent, err := s.repo.GetByID(next)
		if err != nil {
			return err
		}
		if parent == nil {
			if depth == 0 {
				return ErrCategoryNotFound
			}
			return nil
		}
		if parent.ParentID == nil {
			return nil
		}
		next = *parent.ParentID
	}
	return nil
}

func hasAnyText(value models.JSON) bool {
	for _, v := range value {
		if text, ok := v.(string); ok && text != "" {
			return true
		}
	}
	return false
}
