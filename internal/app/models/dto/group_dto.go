package dto

import "github.com/yigit/catequesis/internal/app/models"

// GroupForm represents the add group form submission
type GroupForm struct {
	Name        string `form:"nombre" binding:"required,notblank,max=100"`
	Description string `form:"descripcion" binding:"omitempty,max=500"`
	CatechistID string `form:"catequista_id" binding:"omitempty,uuid"`
}

// GroupListPage is the data behind the group list page
type GroupListPage struct {
	Groups []*models.Group `json:"groups"`
}

// GroupFormPage is the data behind the add group page
type GroupFormPage struct {
	Catechists []*models.User `json:"catechists"`
}
