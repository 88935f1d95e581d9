package service

import (
	"testing"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryParentChain(t *testing.T) {
	db := openServiceTestDB(t, &models.Category{}, &models.Product{})
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	root, err := svc.Create(CreateCategoryInput{Slug: "apparel", NameJSON: map[string]interface{}{"en-US": " Apparel "}})
	require.NoError(t, err)
	assert.True(t, root.IsActive)
	assert.Equal(t, "Apparel", root.NameJSON["en-US"])
	assert.Equal(t, "", root.NameJSON["zh-CN"])

	child, err := svc.Create(CreateCategoryInput{ParentID: &root.ID, Slug: "Shirts", NameJSON: map[string]interface{}{"en-US": "Shirts"}})
	require.NoError(t, err)
	assert.Equal(t, "shirts", child.Slug)

	// 把根挂到自己的子分类下会形成环
	_, err = svc.Update(root.ID, CreateCategoryInput{ParentID: &child.ID, Slug: "apparel", NameJSON: map[string]interface{}{"en-US": "Apparel"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(root.ID, CreateCategoryInput{ParentID: &root.ID, Slug: "apparel", NameJSON: map[string]interface{}{"en-US": "Apparel"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := uint(999)
	_, err = svc.Create(CreateCategoryInput{ParentID: &missing, Slug: "ghost", NameJSON: map[string]interface{}{"en-US": "Ghost"}})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.Create(CreateCategoryInput{Slug: "blank", NameJSON: map[string]interface{}{"en-US": "  "}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	inactive := false
	updated, err := svc.Update(child.ID, CreateCategoryInput{Slug: "shirts", NameJSON: map[string]interface{}{"en-US": "Tops"}, IsActive: &inactive})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)
	assert.False(t, updated.IsActive)

	public, err := svc.ListPublic()
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, root.ID, public[0].ID)
}

func TestCategorySlugStaysReservedAfterDelete(t *testing.T) {
	db := openServiceTestDB(t, &models.Category{}, &models.Product{})
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	category, err := svc.Create(CreateCategoryInput{Slug: "gifts", NameJSON: map[string]interface{}{"en-US": "Gifts"}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(category.ID))
	assert.ErrorIs(t, svc.Delete(category.ID), ErrCategoryNotFound)

	_, err = svc.Create(CreateCategoryInput{Slug: "GIFTS", NameJSON: map[string]interface{}{"en-US": "Gifts"}})
	assert.ErrorIs(t, err, ErrSlugExists)
}
