package catalog

import (
	"strings"
	"time"
)

// User accounts exist in storage only. No route reaches them, so the
// password hash is never serialized.
type User struct {
	Id        int       `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Password  string    `json:"-" bson:"password"`
	Email     string    `json:"email" bson:"email"`
	FirstName string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type InsertUser struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type Story struct {
	Id          int       `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Excerpt     string    `json:"excerpt" bson:"excerpt"`
	Content     string    `json:"content" bson:"content"`
	ImageUrl    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Category    string    `json:"category" bson:"category"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
	Featured    bool      `json:"featured" bson:"featured"`
}

type Video struct {
	Id           int       `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	ThumbnailUrl string    `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	VideoUrl     string    `json:"videoUrl" bson:"videoUrl"`
	Duration     string    `json:"duration" bson:"duration"`
	Featured     bool      `json:"featured" bson:"featured"`
	PublishedAt  time.Time `json:"publishedAt" bson:"publishedAt"`
}

type Article struct {
	Id          int       `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Content     string    `json:"content" bson:"content"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
}

type GalleryItem struct {
	Id          int    `json:"id" bson:"_id"`
	Title       string `json:"title" bson:"title"`
	ImageUrl    string `json:"imageUrl" bson:"imageUrl"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type Subscriber struct {
	Id           int       `json:"id" bson:"_id"`
	FirstName    string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email        string    `json:"email" bson:"email"`
	SubscribedAt time.Time `json:"subscribedAt" bson:"subscribedAt"`
}

type InsertSubscriber struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
}

// BrandCategories lists the recognized story categories per brand skin.
var BrandCategories = map[string][]string{
	"nocturnal": {
		"Dreams",
		"Folklore",
		"Night Skies",
		"Nocturnal Life",
		"Urban Nights",
	},
	"ambientlab": {
		"Ambient",
		"Field Recordings",
		"Process",
		"Releases",
	},
}

// NormalizeCategory matches a free-form category label against the brand's
// recognized set, case-insensitively. Unrecognized labels pass through
// unchanged so the client can render them with a fallback style.
func NormalizeCategory(brand string, category string) (string, bool) {
	for _, known := range BrandCategories[brand] {
		if strings.EqualFold(known, category) {
			return known, true
		}
	}
	return category, false
}
