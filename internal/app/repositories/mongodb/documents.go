// Package mongodb implements the repositories on a MongoDB document store.
// Documents keep the Spanish field names of the catechism database.
package mongodb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
)

type userDoc struct {
	ID              string    `bson:"_id"`
	Username        string    `bson:"usuario"`
	PasswordHash    string    `bson:"contrasena"`
	Role            string    `bson:"rol"`
	FullName        string    `bson:"nombre_completo"`
	LinkedStudentID *string   `bson:"catequizando_id,omitempty"`
	CreatedAt       time.Time `bson:"fecha_creacion"`
}

type personalDoc struct {
	FirstName  string    `bson:"nombres"`
	LastName   string    `bson:"apellidos"`
	NationalID string    `bson:"cedula"`
	BirthDate  time.Time `bson:"fecha_nacimiento"`
	Gender     string    `bson:"genero"`
}

type studentDoc struct {
	ID             string           `bson:"_id"`
	Personal       personalDoc      `bson:"datos_personales"`
	Status         string           `bson:"estado"`
	EnrollmentDate time.Time        `bson:"fecha_ingreso"`
	GroupID        *string          `bson:"grupo_id"`
	Familiars      []familiarDoc    `bson:"familiares"`
	Sacraments     []sacramentDoc   `bson:"sacramentos"`
	Evaluations    []evaluationDoc  `bson:"evaluaciones"`
	Attendances    []attendanceDoc  `bson:"asistencias"`
	Certificates   []certificateDoc `bson:"certificados"`

	// Joined by $lookup
	GroupInfo *groupDoc `bson:"grupo_info,omitempty"`
}

type familiarDoc struct {
	FullName     string `bson:"nombre"`
	Relationship string `bson:"parentesco"`
	Phone        string `bson:"telefono,omitempty"`
}

type sacramentDoc struct {
	Name     string     `bson:"nombre"`
	Date     *time.Time `bson:"fecha,omitempty"`
	Parish   string     `bson:"parroquia,omitempty"`
	Received bool       `bson:"recibido"`
}

type evaluationDoc struct {
	Period string  `bson:"periodo"`
	Grade  float64 `bson:"nota"`
	Notes  string  `bson:"observaciones,omitempty"`
}

type attendanceDoc struct {
	Date    time.Time `bson:"fecha"`
	Present bool      `bson:"presente"`
}

type certificateDoc struct {
	Name     string    `bson:"nombre"`
	IssuedAt time.Time `bson:"fecha_emision"`
}

type groupDoc struct {
	ID          string  `bson:"_id"`
	Name        string  `bson:"nombre"`
	Description string  `bson:"descripcion"`
	CatechistID *string `bson:"catequista_id"`

	// Joined by $lookup
	CatechistInfo *userDoc `bson:"catequista_info,omitempty"`
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseID tolerates documents written with foreign identifiers by treating them as absent
func parseID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// mapAll converts every item, never returning a nil slice
func mapAll[T, U any](items []T, convert func(T) U) []U {
	out := make([]U, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:              u.ID.String(),
		Username:        u.Username,
		PasswordHash:    u.PasswordHash,
		Role:            string(u.Role),
		FullName:        u.FullName,
		LinkedStudentID: idString(u.LinkedStudentID),
		CreatedAt:       u.CreatedAt,
	}
}

func documentID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("document id %q is not a uuid: %w", raw, err)
	}
	return id, nil
}

func (d *userDoc) model() (*models.User, error) {
	id, err := documentID(d.ID)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:              id,
		Username:        d.Username,
		PasswordHash:    d.PasswordHash,
		Role:            models.Role(d.Role),
		FullName:        d.FullName,
		LinkedStudentID: parseID(d.LinkedStudentID),
		CreatedAt:       d.CreatedAt,
	}, nil
}

func toStudentDoc(s *models.Student) studentDoc {
	return studentDoc{
		ID: s.ID.String(),
		Personal: personalDoc{
			FirstName:  s.PersonalData.FirstName,
			LastName:   s.PersonalData.LastName,
			NationalID: s.PersonalData.NationalID,
			BirthDate:  s.PersonalData.BirthDate,
			Gender:     s.PersonalData.Gender,
		},
		Status:         s.Status,
		EnrollmentDate: s.EnrollmentDate,
		GroupID:        idString(s.GroupID),
		Familiars: mapAll(s.Familiars, func(f models.Familiar) familiarDoc {
			return familiarDoc{FullName: f.FullName, Relationship: f.Relationship, Phone: f.Phone}
		}),
		Sacraments: mapAll(s.Sacraments, func(sc models.Sacrament) sacramentDoc {
			return sacramentDoc{Name: sc.Name, Date: sc.Date, Parish: sc.Parish, Received: sc.Received}
		}),
		Evaluations: mapAll(s.Evaluations, func(e models.Evaluation) evaluationDoc {
			return evaluationDoc{Period: e.Period, Grade: e.Grade, Notes: e.Notes}
		}),
		Attendances: mapAll(s.Attendances, func(a models.Attendance) attendanceDoc {
			return attendanceDoc{Date: a.Date, Present: a.Present}
		}),
		Certificates: mapAll(s.Certificates, func(c models.Certificate) certificateDoc {
			return certificateDoc{Name: c.Name, IssuedAt: c.IssuedAt}
		}),
	}
}

func (d *studentDoc) model() (*models.Student, error) {
	id, err := documentID(d.ID)
	if err != nil {
		return nil, err
	}
	s := &models.Student{
		ID: id,
		PersonalData: models.PersonalData{
			FirstName:  d.Personal.FirstName,
			LastName:   d.Personal.LastName,
			NationalID: d.Personal.NationalID,
			BirthDate:  d.Personal.BirthDate.UTC(),
			Gender:     d.Personal.Gender,
		},
		Status:         d.Status,
		EnrollmentDate: d.EnrollmentDate.UTC(),
		GroupID:        parseID(d.GroupID),
		Familiars: mapAll(d.Familiars, func(f familiarDoc) models.Familiar {
			return models.Familiar{FullName: f.FullName, Relationship: f.Relationship, Phone: f.Phone}
		}),
		Sacraments: mapAll(d.Sacraments, func(sc sacramentDoc) models.Sacrament {
			return models.Sacrament{Name: sc.Name, Date: sc.Date, Parish: sc.Parish, Received: sc.Received}
		}),
		Evaluations: mapAll(d.Evaluations, func(e evaluationDoc) models.Evaluation {
			return models.Evaluation{Period: e.Period, Grade: e.Grade, Notes: e.Notes}
		}),
		Attendances: mapAll(d.Attendances, func(a attendanceDoc) models.Attendance {
			return models.Attendance{Date: a.Date.UTC(), Present: a.Present}
		}),
		Certificates: mapAll(d.Certificates, func(c certificateDoc) models.Certificate {
			return models.Certificate{Name: c.Name, IssuedAt: c.IssuedAt.UTC()}
		}),
	}
	if d.GroupInfo != nil && s.GroupID != nil {
		s.Group = &models.GroupSummary{ID: *s.GroupID, Name: d.GroupInfo.Name}
	}
	return s, nil
}

func toGroupDoc(g *models.Group) groupDoc {
	return groupDoc{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		CatechistID: idString(g.CatechistID),
	}
}

func (d *groupDoc) model() (*models.Group, error) {
	id, err := documentID(d.ID)
	if err != nil {
		return nil, err
	}
	g := &models.Group{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		CatechistID: parseID(d.CatechistID),
	}
	if c := d.CatechistInfo; c != nil {
		if id, err := uuid.Parse(c.ID); err == nil {
			g.Catechist = &models.UserSummary{ID: id, Username: c.Username, FullName: c.FullName}
		}
	}
	return g, nil
}
