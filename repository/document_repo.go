package repository

import (
	"context"
	"time"

	"github.com/tieubaoca/pdfchat-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type DocumentRepo interface {
	CreateDocument(ctx context.Context, document *types.Document) (string, error)
	GetDocument(ctx context.Context, id string) (*types.Document, error)
	ListDocuments(ctx context.Context) ([]*types.Document, error)
	SetExtractionResult(ctx context.Context, id string, text string, pages []types.DocumentPage, totalPages int) error
	SetVectorized(ctx context.Context, id string, vectorized bool) error
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	DeleteDocument(ctx context.Context, id string) error
}

type documentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo(collection *mongo.Collection) DocumentRepo {
	return &documentRepo{
		collection: collection,
	}
}

func (r *documentRepo) CreateDocument(ctx context.Context, document *types.Document) (string, error) {
	if document.ID == "" {
		document.ID = bson.NewObjectID().Hex()
	}
	now := time.Now().Unix()
	document.CreatedAt = now
	document.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, document)
	return document.ID, err
}

func (r *documentRepo) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	var document types.Document
	err := r.collection.FindOne(ctx, map[string]string{"_id": id}).Decode(&document)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context) ([]*types.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.D{
			{Key: "extracted_text", Value: 0},
			{Key: "pages_data", Value: 0},
		})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var documents []*types.Document
	for cursor.Next(ctx) {
		var document types.Document
		if err := cursor.Decode(&document); err != nil {
			return nil, err
		}
		documents = append(documents, &document)
	}
	return documents, cursor.Err()
}

func (r *documentRepo) SetExtractionResult(ctx context.Context, id string, text string, pages []types.DocumentPage, totalPages int) error {
	_, err := r.collection.UpdateOne(ctx,
		map[string]string{"_id": id},
		bson.M{"$set": bson.M{
			"extracted_text": text,
			"pages_data":     pages,
			"total_pages":    totalPages,
			"updated_at":     time.Now().Unix(),
		}},
	)
	return err
}

func (r *documentRepo) SetVectorized(ctx context.Context, id string, vectorized bool) error {
	_, err := r.collection.UpdateOne(ctx,
		map[string]string{"_id": id},
		bson.M{"$set": bson.M{
			"vectorized": vectorized,
			"updated_at": time.Now().Unix(),
		}},
	)
	return err
}

func (r *documentRepo) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		map[string]string{"_id": id},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().Unix(),
		}},
	)
	return err
}

func (r *documentRepo) DeleteDocument(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]string{"_id": id})
	return err
}
