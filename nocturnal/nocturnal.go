package nocturnal

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/goccy/go-json"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/common"
	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/storage"
)

type Options struct {
	RestApiRoot       string
	Port              int
	Brand             string
	EnableCompression bool
	CompressionConfig compress.Config

	debug bool
}

type App struct {
	Server  *fiber.App
	Viper   *viper.Viper
	DsViper *viper.Viper
	Options Options

	port        int
	restApiRoot string
	brand       string
	storage     storage.Storage
	debug       bool
	init        time.Time
}

// Storage exposes the active storage backend, mainly for boot callbacks and
// tests.
func (app *App) Storage() storage.Storage {
	return app.storage
}

func (app *App) Boot(customRoutesCallbacks ...func(app *App)) {

	err := app.loadDataSource()
	if err != nil {
		log.Fatalf("Error while loading datasource: %v", err)
	}

	app.Middleware(func(c *fiber.Ctx) error {
		requestId := uuid.New().String()
		c.Locals("requestId", requestId)
		c.Set("X-Request-Id", requestId)
		return c.Next()
	})

	app.Middleware(func(c *fiber.Ctx) error {
		method := c.Method()
		err := c.Next()
		if err != nil {
			log.Printf("Error [%v] %v %v: %v\n", c.Locals("requestId"), method, c.OriginalURL(), err)
			switch err := err.(type) {
			case *common.Error:
				details := fiber.Map{"status": err.FiberError.Code, "name": err.Name, "code": err.Code}
				for k, v := range err.Details {
					details[k] = v
				}
				return c.Status(err.FiberError.Code).JSON(fiber.Map{"error": details})
			case *fiber.Error:
				if err.Code == fiber.StatusNotFound {
					return c.Status(err.Code).JSON(fiber.Map{"error": fiber.Map{"status": err.Code, "message": fmt.Sprintf("Unknown method %v %v", method, c.Path())}})
				}
				return c.Status(err.Code).JSON(fiber.Map{"error": fiber.Map{"status": err.Code, "message": err.Message}})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fiber.Map{"status": fiber.StatusInternalServerError, "message": "Internal Server Error"}})
			}
		}
		return nil
	})

	app.Middleware(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Println(e)
			debug.PrintStack()
		},
	}))

	if app.Options.EnableCompression {
		app.Middleware(compress.New(app.Options.CompressionConfig))
	}

	app.mountContentRoutes()

	for _, cb := range customRoutesCallbacks {
		cb(app)
	}

	app.Server.Get("/system/storage/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"stats": app.storage.Stats()})
	})

	app.loadNotFoundRoutes()
}

// loadDataSource reads datasources.json, builds the configured storage
// backend, and seeds it before the listener starts accepting connections.
func (app *App) loadDataSource() error {
	dsViper := viper.New()

	fileToLoad := ""
	if env, present := os.LookupEnv("GO_ENV"); present {
		fileToLoad = "datasources." + env
		dsViper.SetConfigName(fileToLoad)
	} else {
		dsViper.SetConfigName("datasources")
	}
	dsViper.SetConfigType("json")
	dsViper.AddConfigPath("./server")
	dsViper.AddConfigPath(".") // for unit tests

	err := dsViper.ReadInConfig()
	if err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			log.Println(fmt.Sprintf("WARNING: %v.json not found, fallback to datasources.json", fileToLoad))
			dsViper.SetConfigName("datasources")
			err := dsViper.ReadInConfig()
			if err != nil {
				return err
			}
		default:
			return err
		}
	}
	app.DsViper = dsViper

	st, err := storage.New(context.Background(), "db", dsViper)
	if err != nil {
		return err
	}
	app.storage = st

	seedDir := dsViper.GetString("db.seedDir")
	if seedDir == "" {
		seedDir = "./server/data"
	}
	seed := storage.LoadSeedData(seedDir, app.brand)
	err = app.storage.Seed(context.Background(), seed)
	if err != nil {
		return err
	}
	log.Printf("Seeded %v stories, %v videos, %v articles, %v gallery items from %v\n",
		len(seed.Stories), len(seed.Videos), len(seed.Articles), len(seed.Gallery), seedDir)
	return nil
}

func (app *App) loadNotFoundRoutes() {
	app.Server.Get("/*", func(c *fiber.Ctx) error {
		log.Println("GET: " + c.Path())
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"status": 404, "message": fmt.Sprintf("Unknown method %v %v", c.Method(), c.Path())}})
	})
	app.Server.Post("/*", func(c *fiber.Ctx) error {
		log.Println("POST: " + c.Path())
		return c.Status(404).JSON(fiber.Map{"error": fiber.Map{"status": 404, "message": fmt.Sprintf("Unknown method %v %v", c.Method(), c.Path())}})
	})
}

func (app *App) Start() error {
	log.Printf("DEBUG Server took %v ms to start\n", time.Now().UnixMilli()-app.init.UnixMilli())
	return app.Server.Listen(fmt.Sprintf("0.0.0.0:%v", app.port))
}

func (app *App) Middleware(handler fiber.Handler) {
	app.Server.Use(handler)
}

func (app *App) Stop() error {
	log.Println("Stopping server")
	if app.storage != nil {
		err := app.storage.Close()
		if err != nil {
			return err
		}
	}
	return app.Server.Shutdown()
}

func New(options ...Options) *App {
	server := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	var finalOptions Options
	if len(options) > 0 {
		finalOptions = options[0]
	}
	_debug := false
	if envDebug, _ := os.LookupEnv("DEBUG"); envDebug == "true" {
		_debug = true
	}

	appViper := viper.New()

	fileToLoad := ""
	if env, present := os.LookupEnv("GO_ENV"); present {
		fileToLoad = "config." + env
		appViper.SetConfigName(fileToLoad)
	} else {
		appViper.SetConfigName("config")
	}
	appViper.SetConfigType("json")
	appViper.AddConfigPath("./server")
	appViper.AddConfigPath(".") // for unit tests

	err := appViper.ReadInConfig()
	if err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			log.Println(fmt.Sprintf("WARNING: %v.json not found, fallback to config.json", fileToLoad))
			appViper.SetConfigName("config")
			err := appViper.ReadInConfig()
			if err != nil {
				log.Fatalf("fatal error config file: %v", err)
			}
		default:
			log.Fatalf("fatal error config file: %v", err)
		}
	}

	if finalOptions.RestApiRoot == "" {
		finalOptions.RestApiRoot = appViper.GetString("restApiRoot")
	}
	if finalOptions.RestApiRoot == "" {
		finalOptions.RestApiRoot = "/api"
	}
	if finalOptions.Port == 0 {
		finalOptions.Port = appViper.GetInt("port")
	}
	if os.Getenv("PORT") != "" {
		portFromEnv, err := strconv.Atoi(os.Getenv("PORT"))
		if err != nil {
			log.Fatalf("Invalid PORT environment variable: %v", err)
		}
		finalOptions.Port = portFromEnv
	}
	if finalOptions.Brand == "" {
		finalOptions.Brand = appViper.GetString("brand")
	}
	if finalOptions.Brand == "" {
		finalOptions.Brand = "nocturnal"
	}

	app := App{
		Server:  server,
		Viper:   appViper,
		Options: finalOptions,

		debug:       _debug,
		restApiRoot: finalOptions.RestApiRoot,
		port:        finalOptions.Port,
		brand:       finalOptions.Brand,
		init:        time.Now(),
	}

	return &app
}

func InitAndServe() {
	app := New()

	app.Boot()

	log.Fatal(app.Start())
}
