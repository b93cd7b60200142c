package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/accounts-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id, email string, deleted bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "firstName", Value: "Jane"},
		{Key: "lastName", Value: "Doe"},
		{Key: "displayName", Value: "Jane Doe"},
		{Key: "email", Value: email},
		{Key: "passwordHash", Value: "hash"},
		{Key: "role", Value: "admin"},
		{Key: "status", Value: "active"},
		{Key: "isDeleted", Value: deleted},
		{Key: "createdAt", Value: fixedNow},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by id decodes record", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc("u1", "jane@example.com", false)))

		got, err := repo.GetByID(context.Background(), "u1")
		require.NoError(mt, err)
		require.NotNil(mt, got)
		assert.Equal(mt, "u1", got.ID)
		assert.Equal(mt, enums.UserRoleAdmin, got.Role)
		assert.Nil(mt, got.PhoneNumber)
		assert.True(mt, got.CreatedAt.Equal(fixedNow))
	})

	mt.Run("missing record is nil without error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("add maps duplicate phone index", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: db.users index: ux_users_phone_number dup key: { phoneNumber: \"+1234567\" }",
		}))

		err := repo.Add(context.Background(), seedUser("u2", "b@example.com", strPtr("+1234567"), false, fixedNow))
		dup, ok := asDuplicate(err)
		require.True(mt, ok, "expected duplicate, got %v", err)
		assert.Equal(mt, duplicateFieldPhone, dup.Field)
	})

	mt.Run("add maps duplicate email index", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: db.users index: ux_users_email dup key",
		}))

		err := repo.Add(context.Background(), seedUser("u3", "a@example.com", nil, false, fixedNow))
		dup, ok := asDuplicate(err)
		require.True(mt, ok, "expected duplicate, got %v", err)
		assert.Equal(mt, duplicateFieldEmail, dup.Field)
	})

	mt.Run("update reports missing record", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), "missing", seedUser("missing", "m@example.com", nil, false, fixedNow))
		assert.Error(mt, err)
	})

	mt.Run("get all returns batch", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				userDoc("u1", "a@example.com", false),
				userDoc("u2", "b@example.com", false),
			),
		)

		all, err := repo.GetAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "u2", all[1].ID)
	})
}
