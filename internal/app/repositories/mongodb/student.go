package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/dberrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// StudentRepository handles student documents
type StudentRepository struct {
	client   *mongo.Client
	students *mongo.Collection
	users    *mongo.Collection
}

var _ repositories.StudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.MongoDB) *StudentRepository {
	return &StudentRepository{
		client:   database.Client,
		students: database.Database.Collection(db.StudentsCollection),
		users:    database.Database.Collection(db.UsersCollection),
	}
}

// groupLookup joins each student with its group, keeping students without one
var groupLookup = mongo.Pipeline{
	{{Key: "$lookup", Value: bson.M{"from": db.GroupsCollection, "localField": "grupo_id", "foreignField": "_id", "as": "grupo_info"}}},
	{{Key: "$unwind", Value: bson.M{"path": "$grupo_info", "preserveNullAndEmptyArrays": true}}},
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}

	if _, err := r.students.InsertOne(ctx, toStudentDoc(student)); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			logger.Warn().Str("nationalID", student.PersonalData.NationalID).Msg("Attempted to create student with duplicate national id")
			return apperrors.ErrNationalIDTaken
		}
		logger.Error().Err(err).Str("nationalID", student.PersonalData.NationalID).Msg("Error inserting student")
		return fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Str("studentID", student.ID.String()).Msg("Student created successfully")
	return nil
}

func (r *StudentRepository) aggregate(ctx context.Context, match bson.M) ([]*models.Student, error) {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, groupLookup...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "datos_personales.apellidos", Value: 1},
		{Key: "datos_personales.nombres", Value: 1},
	}}})

	cursor, err := r.students.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating students: %w", err)
	}
	return decodeAll(ctx, cursor, (*studentDoc).model)
}

func (r *StudentRepository) findOne(ctx context.Context, match bson.M) (*models.Student, error) {
	students, err := r.aggregate(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return students[0], nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// GetByNationalID retrieves a student by national id
func (r *StudentRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	return r.findOne(ctx, bson.M{"datos_personales.cedula": nationalID})
}

// NationalIDExists checks if a national id is already registered
func (r *StudentRepository) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	n, err := r.students.CountDocuments(ctx, bson.M{"datos_personales.cedula": nationalID})
	if err != nil {
		return false, fmt.Errorf("error checking national id existence: %w", err)
	}
	return n > 0, nil
}

// Update replaces the stored student document
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	doc := toStudentDoc(student)
	res, err := r.students.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrNationalIDTaken
		}
		logger.Error().Err(err).Str("studentID", doc.ID).Msg("Error replacing student")
		return fmt.Errorf("error updating student: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// List retrieves the students admitted by filter
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	switch filter.Scope {
	case models.ScopeAll:
		return r.aggregate(ctx, nil)
	case models.ScopeGroups:
		if len(filter.GroupIDs) == 0 {
			return []*models.Student{}, nil
		}
		ids := make([]string, len(filter.GroupIDs))
		for i, id := range filter.GroupIDs {
			ids[i] = id.String()
		}
		return r.aggregate(ctx, bson.M{"grupo_id": bson.M{"$in": ids}})
	case models.ScopeStudent:
		return r.aggregate(ctx, bson.M{"_id": filter.StudentID.String()})
	default:
		return []*models.Student{}, nil
	}
}

// DeleteWithLinkedUsers removes the student and its linked users. A transaction is
// used when the server supports one; standalone servers get the same sequence
// of writes without it.
func (r *StudentRepository) DeleteWithLinkedUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.deleteWithLinkedUsers(sc, id)
	})
	if dberrors.IsTransactionUnsupported(err) {
		logger.Debug().Msg("MongoDB transactions unavailable, deleting without one")
		return r.deleteWithLinkedUsers(ctx, id)
	}
	if err != nil {
		return 0, err
	}

	removed := result.(int64)
	logger.Info().Str("studentID", id.String()).Int64("removedUsers", removed).Msg("Student deleted with linked users")
	return removed, nil
}

func (r *StudentRepository) deleteWithLinkedUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	key := id.String()

	n, err := r.students.CountDocuments(ctx, bson.M{"_id": key})
	if err != nil {
		return 0, fmt.Errorf("error locating student: %w", err)
	}
	if n == 0 {
		return 0, apperrors.ErrStudentNotFound
	}

	users, err := r.users.DeleteMany(ctx, bson.M{"catequizando_id": key})
	if err != nil {
		return 0, fmt.Errorf("error deleting linked users: %w", err)
	}
	if _, err := r.students.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return 0, fmt.Errorf("error deleting student: %w", err)
	}
	return users.DeletedCount, nil
}
