package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/libreria/internal/catalog/domain"
)

// BookRepoMongoDB implementa la interfaz BookRepository para MongoDB.
type BookRepoMongoDB struct {
	client    *mongo.Client
	booksColl *mongo.Collection
}

// bookDoc es la representación del libro en la colección.
type bookDoc struct {
	ID        int64     `bson:"_id"`
	ISBN      string    `bson:"isbn"`
	Title     string    `bson:"title"`
	Author    string    `bson:"author"`
	Price     float64   `bson:"price"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewBookRepoMongoDB es el constructor del repositorio. Crea el índice único
// por ISBN si no existe.
func NewBookRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*BookRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	coll := client.Database(dbName).Collection("books")

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "isbn", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create isbn index: %w", err)
	}

	return &BookRepoMongoDB{
		client:    client,
		booksColl: coll,
	}, nil
}

func (r *BookRepoMongoDB) Create(ctx context.Context, b *domain.Book) error {
	if b.ID == 0 {
		b.ID = time.Now().UnixNano() // id opaco generado por el repo
	}

	doc := toDoc(b)
	if _, err := r.booksColl.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrBookAlreadyExists
		}
		return err
	}
	return nil
}

func (r *BookRepoMongoDB) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	var doc bookDoc
	err := r.booksColl.FindOne(ctx, bson.M{"isbn": isbn}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return fromDoc(doc), nil
}

func (r *BookRepoMongoDB) Update(ctx context.Context, b *domain.Book) error {
	update := bson.M{"$set": bson.M{
		"title":      b.Title,
		"author":     b.Author,
		"price":      b.Price,
		"updated_at": b.UpdatedAt,
	}}

	res, err := r.booksColl.UpdateOne(ctx, bson.M{"isbn": b.ISBN}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepoMongoDB) DeleteByISBN(ctx context.Context, isbn string) error {
	res, err := r.booksColl.DeleteOne(ctx, bson.M{"isbn": isbn})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepoMongoDB) List(ctx context.Context) ([]*domain.Book, error) {
	cursor, err := r.booksColl.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var books []*domain.Book
	for cursor.Next(ctx) {
		var doc bookDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		books = append(books, fromDoc(doc))
	}
	return books, cursor.Err()
}

func toDoc(b *domain.Book) bookDoc {
	return bookDoc{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func fromDoc(doc bookDoc) *domain.Book {
	return &domain.Book{
		ID:        doc.ID,
		ISBN:      doc.ISBN,
		Title:     doc.Title,
		Author:    doc.Author,
		Price:     doc.Price,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// Verificación estática
var _ domain.BookRepository = (*BookRepoMongoDB)(nil)
