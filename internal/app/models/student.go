package models

import (
	"time"

	"github.com/google/uuid"
)

// Student defines a catechism student ("catequizando")
type Student struct {
	ID             uuid.UUID     `json:"id"`
	PersonalData   PersonalData  `json:"personalData"`
	Status         string        `json:"status"`
	EnrollmentDate time.Time     `json:"enrollmentDate"`
	GroupID        *uuid.UUID    `json:"groupId,omitempty"`
	Familiars      []Familiar    `json:"familiars"`
	Sacraments     []Sacrament   `json:"sacraments"`
	Evaluations    []Evaluation  `json:"evaluations"`
	Attendances    []Attendance  `json:"attendances"`
	Certificates   []Certificate `json:"certificates"`

	// Relations (populated when needed)
	Group *GroupSummary `json:"group,omitempty"`
}

// PersonalData holds the identifying fields of a student
type PersonalData struct {
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	NationalID string    `json:"nationalId"`
	BirthDate  time.Time `json:"birthDate"`
	Gender     string    `json:"gender,omitempty"`
}

// Familiar is a relative or guardian of a student
type Familiar struct {
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone,omitempty"`
}

// Sacrament records a sacrament and whether the student has received it
type Sacrament struct {
	Name     string     `json:"name"`
	Date     *time.Time `json:"date,omitempty"`
	Parish   string     `json:"parish,omitempty"`
	Received bool       `json:"received"`
}

// Evaluation is the grade of a student for one period
type Evaluation struct {
	Period string  `json:"period"`
	Grade  float64 `json:"grade"`
	Notes  string  `json:"notes,omitempty"`
}

// Attendance marks a student present or absent on a class date
type Attendance struct {
	Date    time.Time `json:"date"`
	Present bool      `json:"present"`
}

// Certificate is a document issued to a student
type Certificate struct {
	Name     string    `json:"name"`
	IssuedAt time.Time `json:"issuedAt"`
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	if s.PersonalData.LastName == "" {
		return s.PersonalData.FirstName
	}
	return s.PersonalData.FirstName + " " + s.PersonalData.LastName
}

// StudentScope selects which students a StudentFilter admits.
type StudentScope int

const (
	// ScopeNone admits no student at all.
	ScopeNone StudentScope = iota
	// ScopeAll admits every student.
	ScopeAll
	// ScopeGroups admits students whose group is in GroupIDs.
	ScopeGroups
	// ScopeStudent admits only the student with StudentID.
	ScopeStudent
)

// StudentFilter is the visibility predicate applied to student listings.
type StudentFilter struct {
	Scope     StudentScope
	GroupIDs  []uuid.UUID
	StudentID uuid.UUID
}

// Matches evaluates the filter against a single student.
func (f StudentFilter) Matches(s *Student) bool {
	switch f.Scope {
	case ScopeAll:
		return true
	case ScopeGroups:
		if s.GroupID == nil {
			return false
		}
		for _, id := range f.GroupIDs {
			if id == *s.GroupID {
				return true
			}
		}
		return false
	case ScopeStudent:
		return s.ID == f.StudentID
	default:
		return false
	}
}
