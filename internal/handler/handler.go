package handler

import (
	"github.com/leca/sauce-relay/internal/config"
	"github.com/leca/sauce-relay/internal/database"
	"github.com/leca/sauce-relay/internal/sauce"
	"github.com/leca/sauce-relay/internal/storage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Sauce  *sauce.Client
	DB     database.Database
	Store  storage.Storage
	Config *config.Config
}
