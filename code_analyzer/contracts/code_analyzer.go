package contracts

import (
	"context"

	"github.com/akss-tools/namefix/code_analyzer/models"
)

type ICodeAnalyzer interface {
	GetProjectFiles(sourceDir, includeDir string) (*models.ProjectFileSet, error)
	ProcessFile(filePath string, sourceCode []byte) ([]models.Occurrence, error)
	Discover(ctx context.Context, files *models.ProjectFileSet, includeArgs []string) ([]models.Occurrence, []error)
}
