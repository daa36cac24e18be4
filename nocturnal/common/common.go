package common

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// M is a shortcut for map[string]interface{}
type M map[string]interface{}

// A is a shortcut for []M
type A []M

func LoadFile(filePath string, out interface{}) error {
	jsonFile, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	err2 := json.Unmarshal(jsonFile, &out)
	if err2 != nil {
		return err2
	}
	return nil
}

type Error struct {
	FiberError *fiber.Error
	Code       string
	Details    fiber.Map
	Name       string
}

func (err *Error) Error() string {
	return fmt.Sprintf("%v %v: %v", err.FiberError.Code, err.Code, err.Details["message"])
}

func CreateError(fiberError *fiber.Error, code string, details fiber.Map, name string) *Error {
	return &Error{
		FiberError: fiberError,
		Code:       code,
		Details:    details,
		Name:       name,
	}
}
