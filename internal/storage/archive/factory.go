package archive

import (
	"fmt"

	"github.com/newthinker/valuator/internal/core"
)

// Backend types accepted by New.
const (
	TypeNone    = ""
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
)

// Config selects and configures the archive backend.
type Config struct {
	Type string
	Path string
	S3   S3Config
}

// New builds the configured backend. An empty type disables the archive and
// returns a nil Storage.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeNone:
		return nil, nil
	case TypeLocalFS:
		if cfg.Path == "" {
			return nil, core.Errorf(core.ErrConfigMissing, "archive.path is required for localfs")
		}
		return NewLocalFS(cfg.Path)
	case TypeS3:
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}
