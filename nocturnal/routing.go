package nocturnal

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/catalog"
	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/common"
)

var emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func notFound(message string) *common.Error {
	return common.CreateError(fiber.ErrNotFound, "NOT_FOUND", fiber.Map{"message": message}, "Error")
}

func internalError(message string) *common.Error {
	return common.CreateError(fiber.ErrInternalServerError, "ERR_INTERNAL", fiber.Map{"message": message}, "Error")
}

func (app *App) mountContentRoutes() {
	api := app.Server.Group(app.restApiRoot)

	api.Get("/stories", func(c *fiber.Ctx) error {
		stories, err := app.storage.AllStories(c.UserContext())
		if err != nil {
			return internalError("Error fetching stories")
		}
		return c.JSON(stories)
	})

	// must register before /stories/:id
	api.Get("/stories/featured", func(c *fiber.Ctx) error {
		stories, err := app.storage.FeaturedStories(c.UserContext())
		if err != nil {
			return internalError("Error fetching featured stories")
		}
		return c.JSON(stories)
	})

	api.Get("/stories/:id", func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return notFound("Story not found")
		}
		story, err := app.storage.Story(c.UserContext(), id)
		if err != nil {
			return internalError("Error fetching story")
		}
		if story == nil {
			return notFound("Story not found")
		}
		return c.JSON(story)
	})

	api.Get("/videos", func(c *fiber.Ctx) error {
		videos, err := app.storage.AllVideos(c.UserContext())
		if err != nil {
			return internalError("Error fetching videos")
		}
		return c.JSON(videos)
	})

	api.Get("/videos/featured", func(c *fiber.Ctx) error {
		videos, err := app.storage.FeaturedVideos(c.UserContext())
		if err != nil {
			return internalError("Error fetching featured videos")
		}
		return c.JSON(videos)
	})

	api.Get("/articles", func(c *fiber.Ctx) error {
		articles, err := app.storage.AllArticles(c.UserContext())
		if err != nil {
			return internalError("Error fetching articles")
		}
		return c.JSON(articles)
	})

	api.Get("/gallery", func(c *fiber.Ctx) error {
		items, err := app.storage.AllGalleryItems(c.UserContext())
		if err != nil {
			return internalError("Error fetching gallery items")
		}
		return c.JSON(items)
	})

	api.Post("/subscribe", app.handleSubscribe)
}

func (app *App) handleSubscribe(c *fiber.Ctx) error {
	var body catalog.InsertSubscriber
	if err := c.BodyParser(&body); err != nil {
		return common.CreateError(fiber.ErrBadRequest, "INVALID_BODY", fiber.Map{"message": err.Error()}, "ValidationError")
	}

	email := strings.TrimSpace(body.Email)
	if email == "" {
		return common.CreateError(fiber.ErrBadRequest, "EMAIL_PRESENCE", fiber.Map{"message": "Invalid email", "codes": common.M{"email": []string{"presence"}}}, "ValidationError")
	}
	if !emailRegexp.MatchString(email) {
		return common.CreateError(fiber.ErrBadRequest, "EMAIL_FORMAT", fiber.Map{"message": fmt.Sprintf("The `subscriber` instance is not valid. Details: `email` Invalid email (value: %q).", body.Email), "codes": common.M{"email": []string{"format"}}}, "ValidationError")
	}
	body.Email = email

	subscriber, err := app.storage.AddSubscriber(c.UserContext(), body)
	if err != nil {
		return internalError("Error subscribing to newsletter")
	}
	if app.debug {
		log.Printf("DEBUG: New subscriber %v (%v)\n", subscriber.Id, subscriber.Email)
	}
	return c.Status(fiber.StatusCreated).JSON(subscriber)
}
