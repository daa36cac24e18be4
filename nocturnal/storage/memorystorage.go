package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/catalog"
)

// MemoryStorage keeps every collection in an id-keyed map guarded by a
// single RWMutex. It is the default backend and the reference for the
// Storage contract.
type MemoryStorage struct {
	mu sync.RWMutex

	users       map[int]catalog.User
	stories     map[int]catalog.Story
	videos      map[int]catalog.Video
	articles    map[int]catalog.Article
	gallery     map[int]catalog.GalleryItem
	subscribers map[int]catalog.Subscriber

	nextUserId       int
	nextStoryId      int
	nextVideoId      int
	nextArticleId    int
	nextGalleryId    int
	nextSubscriberId int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:       make(map[int]catalog.User),
		stories:     make(map[int]catalog.Story),
		videos:      make(map[int]catalog.Video),
		articles:    make(map[int]catalog.Article),
		gallery:     make(map[int]catalog.GalleryItem),
		subscribers: make(map[int]catalog.Subscriber),

		nextUserId:       1,
		nextStoryId:      1,
		nextVideoId:      1,
		nextArticleId:    1,
		nextGalleryId:    1,
		nextSubscriberId: 1,
	}
}

// Seed ingests the parsed seed collections and advances every counter past
// the maximum seeded id, so runtime-created records never collide.
func (st *MemoryStorage) Seed(ctx context.Context, data SeedData) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, story := range data.Stories {
		st.stories[story.Id] = story
		if story.Id >= st.nextStoryId {
			st.nextStoryId = story.Id + 1
		}
	}
	for _, video := range data.Videos {
		st.videos[video.Id] = video
		if video.Id >= st.nextVideoId {
			st.nextVideoId = video.Id + 1
		}
	}
	for _, article := range data.Articles {
		st.articles[article.Id] = article
		if article.Id >= st.nextArticleId {
			st.nextArticleId = article.Id + 1
		}
	}
	for _, item := range data.Gallery {
		st.gallery[item.Id] = item
		if item.Id >= st.nextGalleryId {
			st.nextGalleryId = item.Id + 1
		}
	}
	return nil
}

func (st *MemoryStorage) GetUser(ctx context.Context, id int) (*catalog.User, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if user, ok := st.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (st *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*catalog.User, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, user := range st.users {
		if user.Username == username {
			user := user
			return &user, nil
		}
	}
	return nil, nil
}

func (st *MemoryStorage) CreateUser(ctx context.Context, data catalog.InsertUser) (catalog.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), 10)
	if err != nil {
		return catalog.User{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	user := catalog.User{
		Id:        st.nextUserId,
		Username:  data.Username,
		Password:  string(hashed),
		Email:     data.Email,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		CreatedAt: time.Now(),
	}
	st.nextUserId++
	st.users[user.Id] = user
	return user, nil
}

func (st *MemoryStorage) AllStories(ctx context.Context) ([]catalog.Story, error) {
	st.mu.RLock()
	stories := make([]catalog.Story, 0, len(st.stories))
	for _, story := range st.stories {
		stories = append(stories, story)
	}
	st.mu.RUnlock()

	sort.Slice(stories, func(i, j int) bool { return stories[i].Id < stories[j].Id })
	sortStoriesNewestFirst(stories)
	return stories, nil
}

func (st *MemoryStorage) FeaturedStories(ctx context.Context) ([]catalog.Story, error) {
	st.mu.RLock()
	stories := make([]catalog.Story, 0)
	for _, story := range st.stories {
		if story.Featured {
			stories = append(stories, story)
		}
	}
	st.mu.RUnlock()

	sort.Slice(stories, func(i, j int) bool { return stories[i].Id < stories[j].Id })
	sortStoriesNewestFirst(stories)
	return stories, nil
}

func (st *MemoryStorage) Story(ctx context.Context, id int) (*catalog.Story, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if story, ok := st.stories[id]; ok {
		return &story, nil
	}
	return nil, nil
}

func (st *MemoryStorage) AllVideos(ctx context.Context) ([]catalog.Video, error) {
	st.mu.RLock()
	videos := make([]catalog.Video, 0, len(st.videos))
	for _, video := range st.videos {
		videos = append(videos, video)
	}
	st.mu.RUnlock()

	sort.Slice(videos, func(i, j int) bool { return videos[i].Id < videos[j].Id })
	sortVideosNewestFirst(videos)
	return videos, nil
}

func (st *MemoryStorage) FeaturedVideos(ctx context.Context) ([]catalog.Video, error) {
	st.mu.RLock()
	videos := make([]catalog.Video, 0)
	for _, video := range st.videos {
		if video.Featured {
			videos = append(videos, video)
		}
	}
	st.mu.RUnlock()

	sort.Slice(videos, func(i, j int) bool { return videos[i].Id < videos[j].Id })
	sortVideosNewestFirst(videos)
	return videos, nil
}

func (st *MemoryStorage) Video(ctx context.Context, id int) (*catalog.Video, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if video, ok := st.videos[id]; ok {
		return &video, nil
	}
	return nil, nil
}

func (st *MemoryStorage) AllArticles(ctx context.Context) ([]catalog.Article, error) {
	st.mu.RLock()
	articles := make([]catalog.Article, 0, len(st.articles))
	for _, article := range st.articles {
		articles = append(articles, article)
	}
	st.mu.RUnlock()

	sort.Slice(articles, func(i, j int) bool { return articles[i].Id < articles[j].Id })
	sortArticlesNewestFirst(articles)
	return articles, nil
}

func (st *MemoryStorage) Article(ctx context.Context, id int) (*catalog.Article, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if article, ok := st.articles[id]; ok {
		return &article, nil
	}
	return nil, nil
}

// AllGalleryItems lists in id order. Gallery items carry no publishedAt, so
// there is no chronological sort.
func (st *MemoryStorage) AllGalleryItems(ctx context.Context) ([]catalog.GalleryItem, error) {
	st.mu.RLock()
	items := make([]catalog.GalleryItem, 0, len(st.gallery))
	for _, item := range st.gallery {
		items = append(items, item)
	}
	st.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Id < items[j].Id })
	return items, nil
}

func (st *MemoryStorage) GalleryItem(ctx context.Context, id int) (*catalog.GalleryItem, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if item, ok := st.gallery[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (st *MemoryStorage) AddSubscriber(ctx context.Context, data catalog.InsertSubscriber) (catalog.Subscriber, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	subscriber := catalog.Subscriber{
		Id:           st.nextSubscriberId,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		SubscribedAt: time.Now(),
	}
	st.nextSubscriberId++
	st.subscribers[subscriber.Id] = subscriber
	return subscriber, nil
}

func (st *MemoryStorage) Stats() map[string]CollectionStats {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return map[string]CollectionStats{
		"users":       {Count: len(st.users), NextId: st.nextUserId},
		"stories":     {Count: len(st.stories), NextId: st.nextStoryId},
		"videos":      {Count: len(st.videos), NextId: st.nextVideoId},
		"articles":    {Count: len(st.articles), NextId: st.nextArticleId},
		"gallery":     {Count: len(st.gallery), NextId: st.nextGalleryId},
		"subscribers": {Count: len(st.subscribers), NextId: st.nextSubscriberId},
	}
}

func (st *MemoryStorage) Close() error {
	return nil
}
