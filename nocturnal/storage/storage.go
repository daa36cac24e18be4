package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/spf13/viper"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/catalog"
)

// SeedData holds the content collections parsed from the seed directory.
// Users and subscribers have no seed files; they only appear at runtime.
type SeedData struct {
	Stories  []catalog.Story
	Videos   []catalog.Video
	Articles []catalog.Article
	Gallery  []catalog.GalleryItem
}

type CollectionStats struct {
	Count  int `json:"count"`
	NextId int `json:"nextId"`
}

// Storage is the contract every backend satisfies. By-id lookups signal
// absence with a nil record and a nil error. Reads never fail on an empty
// store. Neither CreateUser nor AddSubscriber enforces email or username
// uniqueness.
type Storage interface {
	Seed(ctx context.Context, data SeedData) error

	GetUser(ctx context.Context, id int) (*catalog.User, error)
	GetUserByUsername(ctx context.Context, username string) (*catalog.User, error)
	CreateUser(ctx context.Context, data catalog.InsertUser) (catalog.User, error)

	AllStories(ctx context.Context) ([]catalog.Story, error)
	FeaturedStories(ctx context.Context) ([]catalog.Story, error)
	Story(ctx context.Context, id int) (*catalog.Story, error)

	AllVideos(ctx context.Context) ([]catalog.Video, error)
	FeaturedVideos(ctx context.Context) ([]catalog.Video, error)
	Video(ctx context.Context, id int) (*catalog.Video, error)

	AllArticles(ctx context.Context) ([]catalog.Article, error)
	Article(ctx context.Context, id int) (*catalog.Article, error)

	AllGalleryItems(ctx context.Context) ([]catalog.GalleryItem, error)
	GalleryItem(ctx context.Context, id int) (*catalog.GalleryItem, error)

	AddSubscriber(ctx context.Context, data catalog.InsertSubscriber) (catalog.Subscriber, error)

	Stats() map[string]CollectionStats
	Close() error
}

// New builds the storage backend selected by the datasource config's
// connector key.
func New(parentContext context.Context, dsKey string, dsViper *viper.Viper) (Storage, error) {
	var connector = dsViper.GetString(dsKey + ".connector")
	switch connector {
	case "memory", "":
		return NewMemoryStorage(), nil
	case "mongodb":
		return NewMongoStorage(parentContext, dsKey, dsViper)
	case "redis":
		return NewRedisStorage(parentContext, dsKey, dsViper)
	default:
		return nil, errors.New("Invalid connector " + connector)
	}
}

func sortStoriesNewestFirst(stories []catalog.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].PublishedAt.After(stories[j].PublishedAt)
	})
}

func sortVideosNewestFirst(videos []catalog.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})
}

func sortArticlesNewestFirst(articles []catalog.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
