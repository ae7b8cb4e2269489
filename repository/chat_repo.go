package repository

import (
	"context"
	"time"

	"github.com/tieubaoca/pdfchat-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ChatRepo interface {
	CreateChat(ctx context.Context, chat *types.Chat) (string, error)
	GetChat(ctx context.Context, id string) (*types.Chat, error)
	GetChatsByDocument(ctx context.Context, documentID string) ([]*types.Chat, error)
	DeleteChat(ctx context.Context, id string) error
	DeleteChatsByDocument(ctx context.Context, documentID string) error
}

type chatRepo struct {
	collection *mongo.Collection
}

func NewChatRepo(collection *mongo.Collection) ChatRepo {
	return &chatRepo{
		collection: collection,
	}
}

func (r *chatRepo) CreateChat(ctx context.Context, chat *types.Chat) (string, error) {
	if chat.ID == "" {
		chat.ID = bson.NewObjectID().Hex()
	}
	chat.CreatedAt = time.Now().Unix()
	_, err := r.collection.InsertOne(ctx, chat)
	return chat.ID, err
}

func (r *chatRepo) GetChat(ctx context.Context, id string) (*types.Chat, error) {
	var chat types.Chat
	err := r.collection.FindOne(ctx, map[string]string{"_id": id}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepo) GetChatsByDocument(ctx context.Context, documentID string) ([]*types.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, map[string]string{"document_id": documentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []*types.Chat
	for cursor.Next(ctx) {
		var chat types.Chat
		if err := cursor.Decode(&chat); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, cursor.Err()
}

func (r *chatRepo) DeleteChat(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]string{"_id": id})
	return err
}

func (r *chatRepo) DeleteChatsByDocument(ctx context.Context, documentID string) error {
	_, err := r.collection.DeleteMany(ctx, map[string]string{"document_id": documentID})
	return err
}
