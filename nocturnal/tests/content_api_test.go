package tests

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal"
	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/common"
)

var server *nocturnal.App
var gallerylessServer *nocturnal.App

const baseUrl = "http://localhost:8030/api"
const gallerylessBaseUrl = "http://localhost:8031/api"

// before all tests
func TestMain(m *testing.M) {

	server = nocturnal.New()
	server.Boot()
	go func() {
		err := server.Start()
		if err != nil {
			log.Fatalf("failed to start: %v", err)
		}
	}()

	// second skin with a deliberately broken gallery seed file
	err := os.Setenv("GO_ENV", "galleryless")
	if err != nil {
		log.Fatal(err)
	}
	gallerylessServer = nocturnal.New()
	gallerylessServer.Boot()
	err = os.Unsetenv("GO_ENV")
	if err != nil {
		log.Fatal(err)
	}
	go func() {
		err := gallerylessServer.Start()
		if err != nil {
			log.Fatalf("failed to start: %v", err)
		}
	}()

	time.Sleep(1 * time.Second)

	code := m.Run()

	// teardown
	err = server.Stop()
	if err != nil {
		log.Fatalf("failed to stop: %v", err)
	}
	err = gallerylessServer.Stop()
	if err != nil {
		log.Fatalf("failed to stop: %v", err)
	}

	os.Exit(code)
}

func Test_GetStories(t *testing.T) {

	t.Parallel()

	status, stories := invokeApiAsList(t, "GET", baseUrl+"/stories")
	assert.Equal(t, 200, status)
	assert.Equal(t, 3, len(stories))

	// newest first
	assert.EqualValues(t, 3, stories[0]["id"])
	assert.EqualValues(t, 2, stories[1]["id"])
	assert.EqualValues(t, 1, stories[2]["id"])
}

func Test_GetFeaturedStories(t *testing.T) {

	t.Parallel()

	status, stories := invokeApiAsList(t, "GET", baseUrl+"/stories/featured")
	assert.Equal(t, 200, status)
	assert.Equal(t, 2, len(stories))
	for _, story := range stories {
		assert.Equal(t, true, story["featured"])
	}
	assert.EqualValues(t, 2, stories[0]["id"])
	assert.EqualValues(t, 1, stories[1]["id"])
}

func Test_GetStoryById(t *testing.T) {

	t.Parallel()

	status, story := invokeApi(t, "GET", baseUrl+"/stories/2", nil)
	assert.Equal(t, 200, status)
	assert.EqualValues(t, 2, story["id"])
	assert.Equal(t, "Second Story", story["title"])
}

func Test_GetStoryNotFound(t *testing.T) {

	t.Parallel()

	status, parsed := invokeApi(t, "GET", baseUrl+"/stories/999999", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Story not found", errorMessage(parsed))
}

func Test_GetStoryInvalidId(t *testing.T) {

	t.Parallel()

	status, parsed := invokeApi(t, "GET", baseUrl+"/stories/not-a-number", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Story not found", errorMessage(parsed))
}

func Test_GetVideos(t *testing.T) {

	t.Parallel()

	status, videos := invokeApiAsList(t, "GET", baseUrl+"/videos")
	assert.Equal(t, 200, status)
	assert.Equal(t, 2, len(videos))
	assert.EqualValues(t, 2, videos[0]["id"])
	assert.EqualValues(t, 1, videos[1]["id"])
}

func Test_GetFeaturedVideos(t *testing.T) {

	t.Parallel()

	status, videos := invokeApiAsList(t, "GET", baseUrl+"/videos/featured")
	assert.Equal(t, 200, status)
	assert.Equal(t, 1, len(videos))
	assert.EqualValues(t, 1, videos[0]["id"])
	assert.Equal(t, true, videos[0]["featured"])
}

func Test_GetArticles(t *testing.T) {

	t.Parallel()

	status, articles := invokeApiAsList(t, "GET", baseUrl+"/articles")
	assert.Equal(t, 200, status)
	assert.Equal(t, 2, len(articles))
	assert.EqualValues(t, 2, articles[0]["id"])
	assert.EqualValues(t, 1, articles[1]["id"])
}

func Test_GetGallery(t *testing.T) {

	t.Parallel()

	status, items := invokeApiAsList(t, "GET", baseUrl+"/gallery")
	assert.Equal(t, 200, status)
	assert.Equal(t, 2, len(items))
	assert.EqualValues(t, 1, items[0]["id"])
	assert.EqualValues(t, 2, items[1]["id"])
}

func Test_Subscribe(t *testing.T) {

	t.Parallel()

	status, subscriber := invokeApi(t, "POST", baseUrl+"/subscribe", common.M{
		"firstName": "Selene",
		"email":     "selene@example.com",
	})
	assert.Equal(t, 201, status)
	assert.NotNil(t, subscriber["id"])
	assert.Equal(t, "selene@example.com", subscriber["email"])
	assert.NotNil(t, subscriber["subscribedAt"])

	// the same email subscribes again, with a new id
	status, again := invokeApi(t, "POST", baseUrl+"/subscribe", common.M{
		"email": "selene@example.com",
	})
	assert.Equal(t, 201, status)
	assert.NotEqual(t, subscriber["id"], again["id"])
}

func Test_SubscribeInvalidEmail(t *testing.T) {

	t.Parallel()

	status, parsed := invokeApi(t, "POST", baseUrl+"/subscribe", common.M{
		"email": "not-an-email",
	})
	assert.Equal(t, 400, status)
	assert.Contains(t, errorMessage(parsed), "email")
}

func Test_SubscribeMissingEmail(t *testing.T) {

	t.Parallel()

	status, parsed := invokeApi(t, "POST", baseUrl+"/subscribe", common.M{
		"firstName": "Nobody",
	})
	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid email", errorMessage(parsed))
}

func Test_StorageStats(t *testing.T) {

	t.Parallel()

	status, parsed := invokeApi(t, "GET", "http://localhost:8030/system/storage/stats", nil)
	assert.Equal(t, 200, status)
	stats, ok := parsed["stats"].(map[string]interface{})
	assert.True(t, ok)
	stories, ok := stats["stories"].(map[string]interface{})
	assert.True(t, ok)
	assert.EqualValues(t, 3, stories["count"])
	// seed ids are 3, 1, 2, so the counter must sit past the max
	assert.EqualValues(t, 4, stories["nextId"])
}

func Test_UnknownRoute(t *testing.T) {

	t.Parallel()

	status, parsed := invokeApi(t, "GET", baseUrl+"/podcasts", nil)
	assert.Equal(t, 404, status)
	assert.Contains(t, errorMessage(parsed), "Unknown method")
}

func Test_GallerylessSkinServesEmptyGallery(t *testing.T) {

	t.Parallel()

	// the broken seed file degrades to an empty collection, not an error
	status, items := invokeApiAsList(t, "GET", gallerylessBaseUrl+"/gallery")
	assert.Equal(t, 200, status)
	assert.Equal(t, 0, len(items))

	// and the other collections load normally
	status, stories := invokeApiAsList(t, "GET", gallerylessBaseUrl+"/stories")
	assert.Equal(t, 200, status)
	assert.Equal(t, 3, len(stories))
}
