package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ludo-technologies/argscan/domain"
)

// ArityUseCase orchestrates the arity analysis workflow: collect, analyze, report
type ArityUseCase struct {
	service    domain.ArityService
	fileReader domain.SourceFileReader
	formatter  domain.OutputFormatter
}

// NewArityUseCase creates a new arity use case
func NewArityUseCase(service domain.ArityService, formatter domain.OutputFormatter) *ArityUseCase {
	return &ArityUseCase{
		service:    service,
		fileReader: NewFileHelper(),
		formatter:  formatter,
	}
}

// Analyze collects the source files below req.Root and analyzes them
// without writing any output
func (uc *ArityUseCase) Analyze(ctx context.Context, req domain.ArityRequest) (*domain.ArityResponse, error) {
	// Validate input
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	files, err := uc.fileReader.CollectSourceFiles(req.Root, domain.CollectOptions{
		Extensions:       req.Extensions,
		ExcludePatterns:  req.ExcludePatterns,
		FollowSymlinks:   req.FollowSymlinks,
		RespectGitignore: req.RespectGitignore,
	})
	if err != nil {
		return nil, domain.NewFileNotFoundError(req.Root, err)
	}

	// Update request with collected files; an empty list is a valid, empty report
	req.Paths = files

	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		var domainErr domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewAnalysisError("arity analysis failed", err)
	}

	return response, nil
}

// Execute performs the complete workflow and writes the report
func (uc *ArityUseCase) Execute(ctx context.Context, req domain.ArityRequest) (*domain.ArityResponse, error) {
	response, err := uc.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := uc.writeOutput(response, req); err != nil {
		return nil, err
	}
	return response, nil
}

// AnalyzeFile analyzes a single file
func (uc *ArityUseCase) AnalyzeFile(ctx context.Context, filePath string, req domain.ArityRequest) (*domain.ArityResponse, error) {
	// Validate file
	if !uc.fileReader.IsSourceFile(filePath, req.Extensions) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a Rust source file: %s", filePath), nil)
	}

	// Check if file exists
	exists, err := uc.fileReader.FileExists(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, fmt.Errorf("file does not exist"))
	}

	return uc.service.AnalyzeFile(ctx, filePath, req)
}

// writeOutput writes the report to req.OutputPath, req.OutputWriter or stdout
func (uc *ArityUseCase) writeOutput(response *domain.ArityResponse, req domain.ArityRequest) error {
	if uc.formatter == nil {
		return nil
	}

	writer := req.OutputWriter
	if req.OutputPath != "" {
		file, err := os.Create(req.OutputPath)
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create output file %s", req.OutputPath), err)
		}
		defer file.Close()
		writer = file
	}
	if writer == nil {
		writer = os.Stdout
	}

	if err := uc.formatter.Write(response, req.OutputFormat, writer); err != nil {
		if domain.HasCode(err, domain.ErrCodeUnsupportedFormat) {
			return err
		}
		return domain.NewOutputError("failed to write report", err)
	}
	return nil
}

// validateRequest validates the arity request
func (uc *ArityUseCase) validateRequest(req domain.ArityRequest) error {
	if req.Root == "" {
		return fmt.Errorf("no directory specified")
	}

	if req.MinArgs < 0 {
		return fmt.Errorf("minimum argument count cannot be negative")
	}

	if len(req.Extensions) == 0 {
		return fmt.Errorf("no source file extensions configured")
	}

	if _, err := domain.ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}

	if _, err := domain.ParseSortCriteria(string(req.SortBy)); err != nil {
		return err
	}

	return nil
}

// ArityUseCaseBuilder provides a builder pattern for creating ArityUseCase
type ArityUseCaseBuilder struct {
	service    domain.ArityService
	fileReader domain.SourceFileReader
	formatter  domain.OutputFormatter
}

// NewArityUseCaseBuilder creates a new builder
func NewArityUseCaseBuilder() *ArityUseCaseBuilder {
	return &ArityUseCaseBuilder{}
}

// WithService sets the arity service
func (b *ArityUseCaseBuilder) WithService(service domain.ArityService) *ArityUseCaseBuilder {
	b.service = service
	return b
}

// WithFileReader sets the source file reader
func (b *ArityUseCaseBuilder) WithFileReader(fileReader domain.SourceFileReader) *ArityUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithFormatter sets the output formatter
func (b *ArityUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *ArityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the ArityUseCase with the configured dependencies
func (b *ArityUseCaseBuilder) Build() (*ArityUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("arity service is required")
	}

	uc := &ArityUseCase{
		service:    b.service,
		fileReader: b.fileReader,
		formatter:  b.formatter,
	}

	if uc.fileReader == nil {
		uc.fileReader = NewFileHelper()
	}

	return uc, nil
}
