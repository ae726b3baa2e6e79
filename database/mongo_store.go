package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoOpTimeout = 5 * time.Second

// MongoStore mongodb record store.
type MongoStore struct {
	users    *mongo.Collection
	groups   *mongo.Collection
	messages *mongo.Collection
}

// NewMongoStore new a MongoStore on db
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection("users"),
		groups:   db.Collection("groups"),
		messages: db.Collection("messages"),
	}
}

func mongoCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), mongoOpTimeout)
}

// FindUser FindUser
func (s *MongoStore) FindUser(username string) (*User, error) {
	ctx, cancel := mongoCtx()
	defer cancel()
	var user User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, errors.Wrap(ErrNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateOnline UpdateOnline
func (s *MongoStore) UpdateOnline(username string, online bool) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	res, err := s.users.UpdateOne(ctx, bson.M{"username": username},
		bson.M{"$set": bson.M{"online": online}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.Wrap(ErrNotFound, username)
	}
	return nil
}

// ListUsers ListUsers
func (s *MongoStore) ListUsers() ([]*User, error) {
	ctx, cancel := mongoCtx()
	defer cancel()
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	users := make([]*User, 0)
	err = cursor.All(ctx, &users)
	return users, err
}

// SaveUser SaveUser
func (s *MongoStore) SaveUser(user *User) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	_, err := s.users.InsertOne(ctx, user)
	return err
}

// SaveGroup SaveGroup
func (s *MongoStore) SaveGroup(group *Group) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	_, err := s.groups.InsertOne(ctx, group)
	return err
}

// FindGroup FindGroup
func (s *MongoStore) FindGroup(id string) (*Group, error) {
	ctx, cancel := mongoCtx()
	defer cancel()
	var group Group
	err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindGroupsByMember FindGroupsByMember
func (s *MongoStore) FindGroupsByMember(username string) ([]*Group, error) {
	ctx, cancel := mongoCtx()
	defer cancel()
	cursor, err := s.groups.Find(ctx, bson.M{"members": username})
	if err != nil {
		return nil, err
	}
	groups := make([]*Group, 0)
	err = cursor.All(ctx, &groups)
	return groups, err
}

// SaveMessage SaveMessage
func (s *MongoStore) SaveMessage(msg *Message) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	_, err := s.messages.InsertOne(ctx, msg)
	return err
}

// MarkRead MarkRead
func (s *MongoStore) MarkRead(id string) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	res, err := s.messages.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.Wrap(ErrNotFound, id)
	}
	return nil
}

// QueryMessages QueryMessages
func (s *MongoStore) QueryMessages(filter MessageFilter) ([]*Message, error) {
	var query bson.M
	switch {
	case filter.Public:
		query = bson.M{"receiver": "", "groupId": ""}
	case filter.GroupID != "":
		query = bson.M{"groupId": filter.GroupID}
	default:
		query = bson.M{"$or": bson.A{
			bson.M{"sender": filter.PeerA, "receiver": filter.PeerB},
			bson.M{"sender": filter.PeerB, "receiver": filter.PeerA},
		}}
	}

	ctx, cancel := mongoCtx()
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createAt", Value: 1}})
	cursor, err := s.messages.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	msgs := make([]*Message, 0)
	err = cursor.All(ctx, &msgs)
	return msgs, err
}

// InitMongoDb connects and pings the mongo deployment
func InitMongoDb(uri, dbname string) (*mongo.Database, error) {
	ctx, cancel := mongoCtx()
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client.Database(dbname), nil
}
