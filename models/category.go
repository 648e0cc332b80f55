package models

import "github.com/volatiletech/null"

type Category struct {
	ID       int      `json:"id" db:"cat_id"`
	Name     string   `json:"name" db:"cat_name"`
	ParentID null.Int `json:"parentId" db:"cat_parent_id"`
}

// CategoryNode is a category with its resolved children, for nested views.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// FlatCategory is a pre-order row of the tree with its nesting depth,
// for indented list display.
type FlatCategory struct {
	Category
	Depth int `json:"depth"`
}
