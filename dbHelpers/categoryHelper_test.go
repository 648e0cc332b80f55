package dbHelpers

import (
	"testing"

	"github.com/simplymanage/simplymanage-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
)

func cat(id int, name string, parentID int) models.Category {
	c := models.Category{ID: id, Name: name}
	if parentID != 0 {
		c.ParentID = null.IntFrom(parentID)
	}
	return c
}

func TestDescendantIDsExpandsWholeSubtree(t *testing.T) {
	// A(1) -> B(2) -> C(3), plus unrelated D(4)
	all := []models.Category{
		cat(1, "A", 0),
		cat(2, "B", 1),
		cat(3, "C", 2),
		cat(4, "D", 0),
	}

	assert.ElementsMatch(t, []int{2, 3}, DescendantIDs(1, all))
	assert.ElementsMatch(t, []int{3}, DescendantIDs(2, all))
	assert.Empty(t, DescendantIDs(3, all))
	assert.Empty(t, DescendantIDs(4, all))
}

func TestDescendantIDsSurvivesCycle(t *testing.T) {
	// corrupted parent chain: 1 -> 2 -> 3 -> 1
	all := []models.Category{
		cat(1, "A", 3),
		cat(2, "B", 1),
		cat(3, "C", 2),
	}

	got := DescendantIDs(1, all)
	assert.ElementsMatch(t, []int{2, 3}, got)
}

func TestBuildCategoryTree(t *testing.T) {
	all := []models.Category{
		cat(1, "Electronics", 0),
		cat(2, "Cameras", 1),
		cat(3, "Lenses", 2),
		cat(4, "Furniture", 0),
	}

	tree := BuildCategoryTree(all)
	require.Len(t, tree, 2)

	byName := map[string]*models.CategoryNode{}
	for _, node := range tree {
		byName[node.Name] = node
	}
	require.Contains(t, byName, "Electronics")
	require.Contains(t, byName, "Furniture")

	electronics := byName["Electronics"]
	require.Len(t, electronics.Children, 1)
	assert.Equal(t, "Cameras", electronics.Children[0].Name)
	require.Len(t, electronics.Children[0].Children, 1)
	assert.Equal(t, "Lenses", electronics.Children[0].Children[0].Name)
	assert.Empty(t, byName["Furniture"].Children)
}

func TestBuildCategoryTreeOrphanBecomesRoot(t *testing.T) {
	all := []models.Category{
		cat(2, "Cameras", 99), // parent missing from the set
	}

	tree := BuildCategoryTree(all)
	require.Len(t, tree, 1)
	assert.Equal(t, 2, tree[0].ID)
}

func TestFlattenTreePreOrderWithDepth(t *testing.T) {
	all := []models.Category{
		cat(1, "Electronics", 0),
		cat(2, "Cameras", 1),
		cat(3, "Lenses", 2),
		cat(4, "Tripods", 1),
	}

	flat := FlattenTree(BuildCategoryTree(all))
	require.Len(t, flat, 4)

	assert.Equal(t, "Electronics", flat[0].Name)
	assert.Equal(t, 0, flat[0].Depth)
	assert.Equal(t, "Cameras", flat[1].Name)
	assert.Equal(t, 1, flat[1].Depth)
	assert.Equal(t, "Lenses", flat[2].Name)
	assert.Equal(t, 2, flat[2].Depth)
	assert.Equal(t, "Tripods", flat[3].Name)
	assert.Equal(t, 1, flat[3].Depth)
}
