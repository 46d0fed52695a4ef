package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories/repotest"
)

func nestedStudent() *models.Student {
	s := repotest.NewStudent("0911111111", "Ana", nil)
	s.ID = uuid.New()
	baptism := time.Date(2015, 1, 10, 0, 0, 0, 0, time.UTC)
	s.Familiars = []models.Familiar{{FullName: "Rosa Pérez", Relationship: "Madre", Phone: "0991234567"}}
	s.Sacraments = []models.Sacrament{{Name: "Bautismo", Date: &baptism, Parish: "San José", Received: true}}
	s.Evaluations = []models.Evaluation{{Period: "2024-1", Grade: 9.5, Notes: "Participa"}}
	s.Attendances = []models.Attendance{{Date: time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC), Present: true}}
	s.Certificates = []models.Certificate{{Name: "Primera Comunión", IssuedAt: time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)}}
	return s
}

func TestStudentDocumentRoundTrip(t *testing.T) {
	in := nestedStudent()

	data, err := bson.Marshal(toStudentDoc(in))
	require.NoError(t, err)
	var doc studentDoc
	require.NoError(t, bson.Unmarshal(data, &doc))

	out, err := doc.model()
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.PersonalData, out.PersonalData)
	assert.Equal(t, in.Familiars, out.Familiars)
	assert.Equal(t, in.Sacraments[0].Name, out.Sacraments[0].Name)
	require.NotNil(t, out.Sacraments[0].Date)
	assert.True(t, in.Sacraments[0].Date.Equal(*out.Sacraments[0].Date))
	assert.Equal(t, in.Evaluations, out.Evaluations)
	assert.Equal(t, in.Attendances, out.Attendances)
	assert.Equal(t, in.Certificates, out.Certificates)
}

func TestStudentDocumentUsesSpanishKeys(t *testing.T) {
	data, err := bson.Marshal(toStudentDoc(nestedStudent()))
	require.NoError(t, err)
	raw := bson.Raw(data)

	for _, path := range [][]string{
		{"datos_personales", "cedula"},
		{"familiares", "0", "parentesco"},
		{"sacramentos", "0", "parroquia"},
		{"evaluaciones", "0", "nota"},
		{"asistencias", "0", "presente"},
		{"certificados", "0", "fecha_emision"},
	} {
		_, err := raw.LookupErr(path...)
		assert.NoError(t, err, "%v", path)
	}
	assert.Equal(t, "Madre", raw.Lookup("familiares", "0", "parentesco").StringValue())
}

func TestStudentDocumentNeverStoresNullLists(t *testing.T) {
	s := nestedStudent()
	s.Familiars, s.Sacraments, s.Evaluations, s.Attendances, s.Certificates = nil, nil, nil, nil, nil

	doc := toStudentDoc(s)
	assert.NotNil(t, doc.Familiars)
	assert.NotNil(t, doc.Certificates)

	out, err := (&studentDoc{ID: s.ID.String()}).model()
	require.NoError(t, err)
	assert.NotNil(t, out.Familiars)
	assert.NotNil(t, out.Sacraments)
	assert.NotNil(t, out.Evaluations)
	assert.NotNil(t, out.Attendances)
	assert.NotNil(t, out.Certificates)
}
