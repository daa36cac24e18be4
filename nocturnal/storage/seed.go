package storage

import (
	"log"
	"path/filepath"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/catalog"
	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/common"
)

// LoadSeedData reads the four content files from dataDir. A file that is
// missing or fails to parse degrades to an empty collection for that file
// only; loading never fails as a whole.
func LoadSeedData(dataDir string, brand string) SeedData {
	var seed SeedData

	var stories []catalog.Story
	if err := common.LoadFile(filepath.Join(dataDir, "stories.json"), &stories); err != nil {
		log.Printf("WARNING: Error loading stories.json: %v\n", err)
	} else {
		for i := range stories {
			normalized, known := catalog.NormalizeCategory(brand, stories[i].Category)
			if !known {
				log.Printf("WARNING: Unrecognized category %q in story %v\n", stories[i].Category, stories[i].Id)
			}
			stories[i].Category = normalized
		}
		seed.Stories = stories
	}

	var videos []catalog.Video
	if err := common.LoadFile(filepath.Join(dataDir, "videos.json"), &videos); err != nil {
		log.Printf("WARNING: Error loading videos.json: %v\n", err)
	} else {
		seed.Videos = videos
	}

	var articles []catalog.Article
	if err := common.LoadFile(filepath.Join(dataDir, "articles.json"), &articles); err != nil {
		log.Printf("WARNING: Error loading articles.json: %v\n", err)
	} else {
		seed.Articles = articles
	}

	var gallery []catalog.GalleryItem
	if err := common.LoadFile(filepath.Join(dataDir, "gallery.json"), &gallery); err != nil {
		log.Printf("WARNING: Error loading gallery.json: %v\n", err)
	} else {
		seed.Gallery = gallery
	}

	return seed
}
