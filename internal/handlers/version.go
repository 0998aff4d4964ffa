package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/pkg/utils"
)

// Version is the server version, injected at build time:
//
//	go build -ldflags "-X github.com/yatube/yatube/internal/handlers.Version=1.2.3" ./cmd/server
var Version = "dev"

type versionResponse struct {
	Version string `json:"version"`
}

func GetVersion(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, versionResponse{Version: Version})
}
