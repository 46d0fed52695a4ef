package dto

import "github.com/yigit/catequesis/internal/app/models"

// StudentForm represents the add/edit student form submission
type StudentForm struct {
	FirstName  string `form:"nombres" binding:"required,notblank,max=100"`
	LastName   string `form:"apellidos" binding:"required,notblank,max=100"`
	NationalID string `form:"cedula" binding:"required,max=20,cedula"`
	BirthDate  string `form:"fecha_nacimiento" binding:"required,isodate"`
	Gender     string `form:"genero" binding:"omitempty,max=20"`
	Status     string `form:"estado" binding:"omitempty,max=50"`
	GroupID    string `form:"grupo_id" binding:"omitempty,uuid"`
}

// StudentFormPage is the data behind the add/edit student pages
type StudentFormPage struct {
	Student *models.Student `json:"student,omitempty"`
	Groups  []*models.Group `json:"groups"`
}

// StudentListPage is the data behind the home page
type StudentListPage struct {
	Students []*models.Student `json:"students"`
}
