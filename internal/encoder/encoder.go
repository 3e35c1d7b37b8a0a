package encoder

import (
	"github.com/KARENKING112/mtslinker/internal/config"
	"github.com/KARENKING112/mtslinker/internal/models"
)

// Writer renders a composed result to a container file on disk. The compiler
// treats it as a black box: it either produces the file or reports an error.
type Writer interface {
	WriteFile(res *models.ComposedResult, outputPath string, profile config.EncodeProfile) error
}
