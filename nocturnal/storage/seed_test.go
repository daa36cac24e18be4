package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeSeedFile(t *testing.T, dir string, name string, content string) {
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	assert.NoError(t, err)
}

func Test_LoadSeedDataAllFiles(t *testing.T) {

	t.Parallel()

	dir := t.TempDir()
	writeSeedFile(t, dir, "stories.json", `[
		{"id": 1, "title": "First", "excerpt": "e", "content": "c", "category": "night skies", "publishedAt": "2024-10-01T20:00:00Z", "featured": true},
		{"id": 2, "title": "Second", "excerpt": "e", "content": "c", "category": "Midnight Cooking", "publishedAt": "2024-10-02T20:00:00Z"}
	]`)
	writeSeedFile(t, dir, "videos.json", `[
		{"id": 1, "title": "V", "description": "d", "videoUrl": "/v.mp4", "duration": "2:01", "publishedAt": "2024-10-01T20:00:00Z", "featured": false}
	]`)
	writeSeedFile(t, dir, "articles.json", `[
		{"id": 1, "title": "A", "content": "c", "publishedAt": "2024-10-01T20:00:00Z"}
	]`)
	writeSeedFile(t, dir, "gallery.json", `[
		{"id": 1, "title": "G", "imageUrl": "/g.jpg"}
	]`)

	seed := LoadSeedData(dir, "nocturnal")
	assert.Equal(t, 2, len(seed.Stories))
	assert.Equal(t, 1, len(seed.Videos))
	assert.Equal(t, 1, len(seed.Articles))
	assert.Equal(t, 1, len(seed.Gallery))

	// recognized labels normalize to canonical casing, unknown ones pass through
	assert.Equal(t, "Night Skies", seed.Stories[0].Category)
	assert.Equal(t, "Midnight Cooking", seed.Stories[1].Category)
}

func Test_LoadSeedDataMissingFiles(t *testing.T) {

	t.Parallel()

	dir := t.TempDir()
	writeSeedFile(t, dir, "stories.json", `[
		{"id": 1, "title": "Only", "excerpt": "e", "content": "c", "category": "Dreams", "publishedAt": "2024-10-01T20:00:00Z"}
	]`)

	seed := LoadSeedData(dir, "nocturnal")
	assert.Equal(t, 1, len(seed.Stories))
	assert.Equal(t, 0, len(seed.Videos))
	assert.Equal(t, 0, len(seed.Articles))
	assert.Equal(t, 0, len(seed.Gallery))
}

func Test_LoadSeedDataMalformedFileIsIsolated(t *testing.T) {

	t.Parallel()

	dir := t.TempDir()
	writeSeedFile(t, dir, "stories.json", `[
		{"id": 1, "title": "Fine", "excerpt": "e", "content": "c", "category": "Dreams", "publishedAt": "2024-10-01T20:00:00Z"}
	]`)
	writeSeedFile(t, dir, "videos.json", `[
		{"id": 1, "title": "V", "description": "d", "videoUrl": "/v.mp4", "duration": "2:01", "publishedAt": "2024-10-01T20:00:00Z"}
	]`)
	writeSeedFile(t, dir, "articles.json", `[
		{"id": 1, "title": "A", "content": "c", "publishedAt": "2024-10-01T20:00:00Z"}
	]`)
	writeSeedFile(t, dir, "gallery.json", `{not json at all`)

	seed := LoadSeedData(dir, "nocturnal")
	assert.Equal(t, 1, len(seed.Stories))
	assert.Equal(t, 1, len(seed.Videos))
	assert.Equal(t, 1, len(seed.Articles))
	assert.Equal(t, 0, len(seed.Gallery))
}

func Test_LoadSeedDataEmptyDir(t *testing.T) {

	t.Parallel()

	seed := LoadSeedData(t.TempDir(), "nocturnal")
	assert.Equal(t, 0, len(seed.Stories))
	assert.Equal(t, 0, len(seed.Videos))
	assert.Equal(t, 0, len(seed.Articles))
	assert.Equal(t, 0, len(seed.Gallery))
}
