package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/catalog"
)

// RedisStorage satisfies the Storage contract on a Redis database. Records
// are bson-encoded under <database>:<collection>:<id>, with a set of ids per
// collection at <database>:<collection>:_ids for listing.
type RedisStorage struct {
	client   *redis.Client
	database string
	ctx      context.Context
	cancelFn context.CancelFunc

	countersMu       sync.Mutex
	nextUserId       int
	nextSubscriberId int
}

func NewRedisStorage(parentContext context.Context, dsKey string, dsViper *viper.Viper) (*RedisStorage, error) {
	ctx, cancelFn := context.WithCancel(parentContext)
	client := redis.NewClient(&redis.Options{
		Addr:     dsViper.GetString(dsKey + ".url"),
		Password: dsViper.GetString(dsKey + ".password"),
		DB:       dsViper.GetInt(dsKey + ".db"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		cancelFn()
		return nil, err
	}

	st := &RedisStorage{
		client:   client,
		database: dsViper.GetString(dsKey + ".database"),
		ctx:      ctx,
		cancelFn: cancelFn,
	}
	var err error
	st.nextUserId, err = st.nextIdAfterMax(ctx, "users")
	if err != nil {
		cancelFn()
		return nil, err
	}
	st.nextSubscriberId, err = st.nextIdAfterMax(ctx, "subscribers")
	if err != nil {
		cancelFn()
		return nil, err
	}
	return st, nil
}

func (st *RedisStorage) recordKey(collectionName string, id int) string {
	return fmt.Sprintf("%v:%v:%v", st.database, collectionName, id)
}

func (st *RedisStorage) indexKey(collectionName string) string {
	return fmt.Sprintf("%v:%v:_ids", st.database, collectionName)
}

func (st *RedisStorage) collectionIds(ctx context.Context, collectionName string) ([]int, error) {
	members, err := st.client.SMembers(ctx, st.indexKey(collectionName)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(members))
	for _, member := range members {
		id, err := strconv.Atoi(member)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %v index: %w", member, collectionName, err)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (st *RedisStorage) nextIdAfterMax(ctx context.Context, collectionName string) (int, error) {
	ids, err := st.collectionIds(ctx, collectionName)
	if err != nil {
		return 0, err
	}
	nextId := 1
	for _, id := range ids {
		if id >= nextId {
			nextId = id + 1
		}
	}
	return nextId, nil
}

func redisPut[T any](ctx context.Context, st *RedisStorage, collectionName string, id int, record T) error {
	bytes, err := bson.Marshal(record)
	if err != nil {
		return err
	}
	if err := st.client.Set(ctx, st.recordKey(collectionName, id), bytes, 0).Err(); err != nil {
		return err
	}
	return st.client.SAdd(ctx, st.indexKey(collectionName), id).Err()
}

func redisGet[T any](ctx context.Context, st *RedisStorage, collectionName string, id int) (*T, error) {
	cmd := st.client.Get(ctx, st.recordKey(collectionName, id))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	bytes, err := cmd.Bytes()
	if err != nil {
		return nil, err
	}
	var record T
	if err := bson.Unmarshal(bytes, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func redisAll[T any](ctx context.Context, st *RedisStorage, collectionName string) ([]T, error) {
	ids, err := st.collectionIds(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	records := make([]T, 0, len(ids))
	for _, id := range ids {
		record, err := redisGet[T](ctx, st, collectionName, id)
		if err != nil {
			return nil, err
		}
		if record == nil {
			// index entry without a record, nothing to list
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

// Seed overwrites records by id, so reseeding on boot is idempotent.
func (st *RedisStorage) Seed(ctx context.Context, data SeedData) error {
	for _, story := range data.Stories {
		if err := redisPut(ctx, st, "stories", story.Id, story); err != nil {
			return err
		}
	}
	for _, video := range data.Videos {
		if err := redisPut(ctx, st, "videos", video.Id, video); err != nil {
			return err
		}
	}
	for _, article := range data.Articles {
		if err := redisPut(ctx, st, "articles", article.Id, article); err != nil {
			return err
		}
	}
	for _, item := range data.Gallery {
		if err := redisPut(ctx, st, "gallery", item.Id, item); err != nil {
			return err
		}
	}
	return nil
}

func (st *RedisStorage) GetUser(ctx context.Context, id int) (*catalog.User, error) {
	return redisGet[catalog.User](ctx, st, "users", id)
}

func (st *RedisStorage) GetUserByUsername(ctx context.Context, username string) (*catalog.User, error) {
	users, err := redisAll[catalog.User](ctx, st, "users")
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Username == username {
			user := user
			return &user, nil
		}
	}
	return nil, nil
}

func (st *RedisStorage) CreateUser(ctx context.Context, data catalog.InsertUser) (catalog.User, error) {
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
	if err := redisPut(ctx, st, "users", id, user); err != nil {
		return catalog.User{}, err
	}
	return user, nil
}

func (st *RedisStorage) AllStories(ctx context.Context) ([]catalog.Story, error) {
	stories, err := redisAll[catalog.Story](ctx, st, "stories")
	if err != nil {
		return nil, err
	}
	sortStoriesNewestFirst(stories)
	return stories, nil
}

func (st *RedisStorage) FeaturedStories(ctx context.Context) ([]catalog.Story, error) {
	stories, err := st.AllStories(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]catalog.Story, 0)
	for _, story := range stories {
		if story.Featured {
			featured = append(featured, story)
		}
	}
	return featured, nil
}

func (st *RedisStorage) Story(ctx context.Context, id int) (*catalog.Story, error) {
	return redisGet[catalog.Story](ctx, st, "stories", id)
}

func (st *RedisStorage) AllVideos(ctx context.Context) ([]catalog.Video, error) {
	videos, err := redisAll[catalog.Video](ctx, st, "videos")
	if err != nil {
		return nil, err
	}
	sortVideosNewestFirst(videos)
	return videos, nil
}

func (st *RedisStorage) FeaturedVideos(ctx context.Context) ([]catalog.Video, error) {
	videos, err := st.AllVideos(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]catalog.Video, 0)
	for _, video := range videos {
		if video.Featured {
			featured = append(featured, video)
		}
	}
	return featured, nil
}

func (st *RedisStorage) Video(ctx context.Context, id int) (*catalog.Video, error) {
	return redisGet[catalog.Video](ctx, st, "videos", id)
}

func (st *RedisStorage) AllArticles(ctx context.Context) ([]catalog.Article, error) {
	articles, err := redisAll[catalog.Article](ctx, st, "articles")
	if err != nil {
		return nil, err
	}
	sortArticlesNewestFirst(articles)
	return articles, nil
}

func (st *RedisStorage) Article(ctx context.Context, id int) (*catalog.Article, error) {
	return redisGet[catalog.Article](ctx, st, "articles", id)
}

func (st *RedisStorage) AllGalleryItems(ctx context.Context) ([]catalog.GalleryItem, error) {
	return redisAll[catalog.GalleryItem](ctx, st, "gallery")
}

func (st *RedisStorage) GalleryItem(ctx context.Context, id int) (*catalog.GalleryItem, error) {
	return redisGet[catalog.GalleryItem](ctx, st, "gallery", id)
}

func (st *RedisStorage) AddSubscriber(ctx context.Context, data catalog.InsertSubscriber) (catalog.Subscriber, error) {
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
	if err := redisPut(ctx, st, "subscribers", id, subscriber); err != nil {
		return catalog.Subscriber{}, err
	}
	return subscriber, nil
}

func (st *RedisStorage) Stats() map[string]CollectionStats {
	stats := make(map[string]CollectionStats)
	for _, name := range []string{"users", "stories", "videos", "articles", "gallery", "subscribers"} {
		ids, err := st.collectionIds(st.ctx, name)
		if err != nil {
			log.Printf("WARNING: Error reading %v index: %v\n", name, err)
			continue
		}
		nextId := 1
		for _, id := range ids {
			if id >= nextId {
				nextId = id + 1
			}
		}
		stats[name] = CollectionStats{Count: len(ids), NextId: nextId}
	}
	return stats
}

func (st *RedisStorage) Close() error {
	defer st.cancelFn()
	return st.client.Close()
}
