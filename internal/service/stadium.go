package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/franbe7/XLBALL/internal/config"

	"github.com/rs/zerolog"
)

// StadiumLoader pushes the custom arena file to the host.
type StadiumLoader struct {
	path   string
	host   Host
	logger zerolog.Logger
}

func NewStadiumLoader(cfg *config.Config, host Host, logger zerolog.Logger) *StadiumLoader {
	return &StadiumLoader{
		path:   cfg.CustomStadiumPath,
		host:   host,
		logger: logger.With().Str("component", "stadium").Logger(),
	}
}

// Load sends the stadium to the host. A missing file is not an error: the
// host keeps its default arena and Load reports false.
func (s *StadiumLoader) Load(ctx context.Context) (bool, error) {
	fullPath, err := filepath.Abs(s.path)
	if err != nil {
		fullPath = s.path
	}

	raw, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Str("path", fullPath).Msg("custom stadium not found, using default stadium")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stadium: %w", err)
	}

	if err := s.host.SetCustomStadium(ctx, string(raw)); err != nil {
		return false, fmt.Errorf("failed to set custom stadium: %w", err)
	}
	s.logger.Info().Str("path", fullPath).Msg("custom stadium loaded")
	return true, nil
}
