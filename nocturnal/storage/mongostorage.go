package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/crypto/bcrypt"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/catalog"
)

// MongoStorage satisfies the Storage contract on top of a MongoDB database.
// Integer ids are stored as _id, so the seed files round-trip unchanged.
type MongoStorage struct {
	client   *mongo.Client
	database string
	ctx      context.Context
	cancelFn context.CancelFunc

	countersMu       sync.Mutex
	nextUserId       int
	nextSubscriberId int
}

func NewMongoStorage(parentContext context.Context, dsKey string, dsViper *viper.Viper) (*MongoStorage, error) {
	mongoCtx, cancelFn := context.WithCancel(parentContext)

	url := dsViper.GetString(dsKey + ".url")
	if url == "" {
		port := 0
		if dsViper.GetInt(dsKey+".port") > 0 {
			port = dsViper.GetInt(dsKey + ".port")
		}
		url = fmt.Sprintf("mongodb://%v:%v/%v", dsViper.GetString(dsKey+".host"), port, dsViper.GetString(dsKey+".database"))
		log.Printf("Using composed url %v\n", url)
	}

	var clientOpts *options.ClientOptions
	if dsViper.GetString(dsKey+".username") != "" && dsViper.GetString(dsKey+".password") != "" {
		credential := options.Credential{
			Username: dsViper.GetString(dsKey + ".username"),
			Password: dsViper.GetString(dsKey + ".password"),
		}
		clientOpts = options.Client().ApplyURI(url).SetAuth(credential)
	} else {
		clientOpts = options.Client().ApplyURI(url)
	}
	clientOpts = clientOpts.SetSocketTimeout(time.Second * 30).SetConnectTimeout(time.Second * 30).SetServerSelectionTimeout(time.Second * 30).SetMinPoolSize(1).SetMaxPoolSize(5)

	client, err := mongo.Connect(mongoCtx, clientOpts)
	if err != nil {
		cancelFn()
		return nil, err
	}
	err = client.Ping(mongoCtx, readpref.SecondaryPreferred())
	if err != nil {
		cancelFn()
		return nil, err
	}

	st := &MongoStorage{
		client:   client,
		database: dsViper.GetString(dsKey + ".database"),
		ctx:      mongoCtx,
		cancelFn: cancelFn,
	}
	st.nextUserId, err = st.nextIdAfterMax(mongoCtx, "users")
	if err != nil {
		cancelFn()
		return nil, err
	}
	st.nextSubscriberId, err = st.nextIdAfterMax(mongoCtx, "subscribers")
	if err != nil {
		cancelFn()
		return nil, err
	}
	return st, nil
}

func (st *MongoStorage) collection(name string) *mongo.Collection {
	return st.client.Database(st.database).Collection(name)
}

func (st *MongoStorage) nextIdAfterMax(ctx context.Context, collectionName string) (int, error) {
	var record struct {
		Id int `bson:"_id"`
	}
	err := st.collection(collectionName).FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	return record.Id + 1, nil
}

// Seed upserts every record by _id, so booting against an already seeded
// database is idempotent.
func (st *MongoStorage) Seed(ctx context.Context, data SeedData) error {
	upsert := options.Replace().SetUpsert(true)
	for _, story := range data.Stories {
		if _, err := st.collection("stories").ReplaceOne(ctx, bson.M{"_id": story.Id}, story, upsert); err != nil {
			return err
		}
	}
	for _, video := range data.Videos {
		if _, err := st.collection("videos").ReplaceOne(ctx, bson.M{"_id": video.Id}, video, upsert); err != nil {
			return err
		}
	}
	for _, article := range data.Articles {
		if _, err := st.collection("articles").ReplaceOne(ctx, bson.M{"_id": article.Id}, article, upsert); err != nil {
			return err
		}
	}
	for _, item := range data.Gallery {
		if _, err := st.collection("gallery").ReplaceOne(ctx, bson.M{"_id": item.Id}, item, upsert); err != nil {
			return err
		}
	}
	return nil
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, sortKeys bson.D) ([]T, error) {
	opts := options.Find().SetSort(sortKeys)
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			log.Printf("WARNING: Error closing cursor: %v\n", err)
		}
	}()
	records := make([]T, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func findById[T any](ctx context.Context, collection *mongo.Collection, id int) (*T, error) {
	var record T
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

var newestFirst = bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: -1}}
var byIdAsc = bson.D{{Key: "_id", Value: 1}}

func (st *MongoStorage) GetUser(ctx context.Context, id int) (*catalog.User, error) {
	return findById[catalog.User](ctx, st.collection("users"), id)
}

func (st *MongoStorage) GetUserByUsername(ctx context.Context, username string) (*catalog.User, error) {
	var user catalog.User
	err := st.collection("users").FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (st *MongoStorage) CreateUser(ctx context.Context, data catalog.InsertUser) (catalog.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), 10)
	if err != nil {
		return catalog.User{}, err
	}

	st.countersMu.Lock()
	id := st.nextUserId
	st.nextUserId++
	st.countersMu.Unlock()

	user := catalog.User{
		Id:        id,
		Username:  data.Username,
		Password:  string(hashed),
		Email:     data.Email,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		CreatedAt: time.Now(),
	}
	if _, err := st.collection("users").InsertOne(ctx, user); err != nil {
		return catalog.User{}, err
	}
	return user, nil
}

func (st *MongoStorage) AllStories(ctx context.Context) ([]catalog.Story, error) {
	return findAll[catalog.Story](ctx, st.collection("stories"), bson.M{}, newestFirst)
}

func (st *MongoStorage) FeaturedStories(ctx context.Context) ([]catalog.Story, error) {
	return findAll[catalog.Story](ctx, st.collection("stories"), bson.M{"featured": true}, newestFirst)
}

func (st *MongoStorage) Story(ctx context.Context, id int) (*catalog.Story, error) {
	return findById[catalog.Story](ctx, st.collection("stories"), id)
}

func (st *MongoStorage) AllVideos(ctx context.Context) ([]catalog.Video, error) {
	return findAll[catalog.Video](ctx, st.collection("videos"), bson.M{}, newestFirst)
}

func (st *MongoStorage) FeaturedVideos(ctx context.Context) ([]catalog.Video, error) {
	return findAll[catalog.Video](ctx, st.collection("videos"), bson.M{"featured": true}, newestFirst)
}

func (st *MongoStorage) Video(ctx context.Context, id int) (*catalog.Video, error) {
	return findById[catalog.Video](ctx, st.collection("videos"), id)
}

func (st *MongoStorage) AllArticles(ctx context.Context) ([]catalog.Article, error) {
	return findAll[catalog.Article](ctx, st.collection("articles"), bson.M{}, newestFirst)
}

func (st *MongoStorage) Article(ctx context.Context, id int) (*catalog.Article, error) {
	return findById[catalog.Article](ctx, st.collection("articles"), id)
}

func (st *MongoStorage) AllGalleryItems(ctx context.Context) ([]catalog.GalleryItem, error) {
	return findAll[catalog.GalleryItem](ctx, st.collection("gallery"), bson.M{}, byIdAsc)
}

func (st *MongoStorage) GalleryItem(ctx context.Context, id int) (*catalog.GalleryItem, error) {
	return findById[catalog.GalleryItem](ctx, st.collection("gallery"), id)
}

func (st *MongoStorage) AddSubscriber(ctx context.Context, data catalog.InsertSubscriber) (catalog.Subscriber, error) {
	st.countersMu.Lock()
	id := st.nextSubscriberId
	st.nextSubscriberId++
	st.countersMu.Unlock()

	subscriber := catalog.Subscriber{
		Id:           id,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		SubscribedAt: time.Now(),
	}
	if _, err := st.collection("subscribers").InsertOne(ctx, subscriber); err != nil {
		return catalog.Subscriber{}, err
	}
	return subscriber, nil
}

func (st *MongoStorage) Stats() map[string]CollectionStats {
	stats := make(map[string]CollectionStats)
	for _, name := range []string{"users", "stories", "videos", "articles", "gallery", "subscribers"} {
		count, err := st.collection(name).CountDocuments(st.ctx, bson.M{})
		if err != nil {
			log.Printf("WARNING: Error counting %v: %v\n", name, err)
			continue
		}
		nextId, err := st.nextIdAfterMax(st.ctx, name)
		if err != nil {
			log.Printf("WARNING: Error reading max id of %v: %v\n", name, err)
			continue
		}
		stats[name] = CollectionStats{Count: int(count), NextId: nextId}
	}
	return stats
}

func (st *MongoStorage) Close() error {
	defer st.cancelFn()
	return st.client.Disconnect(st.ctx)
}
