package monitor

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"
)

// ContentUpdate is the hashed form of a fetched file.
type ContentUpdate struct {
	URL         string
	NewHash     string
	ContentType string
	Size        int
	FetchedAt   time.Time
}

// Processor handles processing of fetched file content, like hashing.
type Processor struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewProcessor creates a new Processor.
func NewProcessor(logger zerolog.Logger) *Processor {
	return &Processor{
		logger: logger.With().Str("component", "Processor").Logger(),
		now:    time.Now,
	}
}

// ProcessContent computes the SHA-256 of content. Empty content has a valid hash.
func (p *Processor) ProcessContent(url string, content []byte, contentType string) ContentUpdate {
	update := ContentUpdate{
		URL:         url,
		NewHash:     HashContent(content),
		ContentType: contentType,
		Size:        len(content),
		FetchedAt:   p.now(),
	}

	p.logger.Debug().Str("url", url).Str("hash", update.NewHash).Int("size", update.Size).Msg("Content processed, hash calculated")
	return update
}

// HashContent returns the lowercase hex SHA-256 digest of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
