package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oshokin/watermark-tool/internal/config"
	domain "github.com/oshokin/watermark-tool/internal/domain/build"
)

// Repository defines persistence operations for the last build report.
type Repository interface {
	Load(ctx context.Context) (*domain.Report, error)
	Save(ctx context.Context, buildReport *domain.Report) error
}

// FileRepository persists the build report to a JSON file on disk.
// The file is indented so operators can read it directly.
type FileRepository struct {
	// path is the filesystem location of the JSON report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// ErrNotFound is returned when no report has been written yet.
var ErrNotFound = errors.New("report not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// record mirrors domain.Report with stable JSON field names.
type record struct {
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
	Hostname     string       `json:"hostname,omitempty"`
	Username     string       `json:"username,omitempty"`
	AppName      string       `json:"app_name"`
	ArtifactPath string       `json:"artifact_path"`
	ArtifactSize int64        `json:"artifact_size"`
	Succeeded    bool         `json:"succeeded"`
	Steps        []stepRecord `json:"steps"`
}

// stepRecord mirrors domain.Step; the duration is kept human-readable.
type stepRecord struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// Load reads the last report from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var rec record
	if err = json.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return fromRecord(&rec), nil
}

// Save writes the report to disk using an indented JSON representation.
func (r *FileRepository) Save(_ context.Context, buildReport *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(toRecord(buildReport), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}

// fromRecord converts the JSON record into the domain Report model.
func fromRecord(rec *record) *domain.Report {
	var actor *domain.Actor
	if rec.Hostname != "" || rec.Username != "" {
		actor = &domain.Actor{
			Hostname: rec.Hostname,
			Username: rec.Username,
		}
	}

	steps := make([]domain.Step, 0, len(rec.Steps))

	for _, step := range rec.Steps {
		// A malformed duration means a hand-edited file; zero is good enough.
		duration, _ := time.ParseDuration(step.Duration)

		steps = append(steps, domain.Step{
			Name:     step.Name,
			Status:   domain.StepStatus(step.Status),
			Duration: duration,
			Error:    step.Error,
		})
	}

	return &domain.Report{
		StartedAt:    rec.StartedAt,
		FinishedAt:   rec.FinishedAt,
		Actor:        actor,
		AppName:      rec.AppName,
		ArtifactPath: rec.ArtifactPath,
		ArtifactSize: rec.ArtifactSize,
		Succeeded:    rec.Succeeded,
		Steps:        steps,
	}
}

// toRecord converts the domain Report model into the JSON record.
func toRecord(buildReport *domain.Report) *record {
	rec := &record{
		StartedAt:    buildReport.StartedAt,
		FinishedAt:   buildReport.FinishedAt,
		AppName:      buildReport.AppName,
		ArtifactPath: buildReport.ArtifactPath,
		ArtifactSize: buildReport.ArtifactSize,
		Succeeded:    buildReport.Succeeded,
		Steps:        make([]stepRecord, 0, len(buildReport.Steps)),
	}

	if buildReport.Actor != nil {
		rec.Hostname = buildReport.Actor.Hostname
		rec.Username = buildReport.Actor.Username
	}

	for _, step := range buildReport.Steps {
		rec.Steps = append(rec.Steps, stepRecord{
			Name:     step.Name,
			Status:   string(step.Status),
			Duration: step.Duration.String(),
			Error:    step.Error,
		})
	}

	return rec
}
