package publisher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/logger"
	"github.com/oshokin/watermark-tool/internal/service/common"
	"github.com/oshokin/watermark-tool/internal/service/updater"
)

// Options contains inputs for the publisher entry point.
type Options struct {
	// ConfigPath is an optional path to persist connection settings (defaults to settings.yaml).
	ConfigPath string
	// ServerAddress is the socket the file server should listen on, stored in settings.
	ServerAddress string
	// UpdateFolder is the URL workstations will download release files from.
	UpdateFolder string
}

// publisher prepares release metadata (manifest) for distribution.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type publisher struct {
	// cfg holds the suite settings including the update folder URL.
	cfg *config.Config
	// cfgFilename is the path where configuration is saved.
	cfgFilename string
	// desc contains the release manifest with files, roles, and executables.
	desc *updater.Description
}

// errUpdaterRunning indicates that publishing was attempted while an update is being applied.
var errUpdaterRunning = errors.New("the updater is running now")

// Run executes the publishing workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "watermark-publisher")

	pub, err := newPublisher(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize publisher: %w", err)
	}

	if err = pub.Run(ctx); err != nil {
		return fmt.Errorf("publisher failed: %w", err)
	}

	logger.Info(ctx, "Publisher completed successfully")

	return nil
}

// newPublisher creates a publisher instance, persisting the connection settings
// it was given so the published settings file matches the manifest checksums.
func newPublisher(ctx context.Context, opts *Options) (*publisher, error) {
	if updater.IsUpdaterRunningNow(ctx) {
		return nil, errUpdaterRunning
	}

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	settings.ServerAddress = opts.ServerAddress
	settings.ServerUpdateFolder = opts.UpdateFolder

	if err = config.Save(opts.ConfigPath, settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	pub := &publisher{
		cfg:         settings,
		cfgFilename: opts.ConfigPath,
		desc:        updater.NewDescription(),
	}

	if err = pub.ensureFolderReachable(ctx); err != nil {
		return nil, err
	}

	return pub, nil
}

// Run populates and writes the release description (manifest) to disk.
func (p *publisher) Run(ctx context.Context) error {
	logger.Info(ctx, "Preparing release description")

	if err := p.fillDescription(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saving release description", "path", updater.VersionFilename)

	if err := p.saveDescription(); err != nil {
		return err
	}

	p.printNextSteps(ctx)

	return nil
}

// fillDescription populates roles, executables and file checksums into the manifest.
func (p *publisher) fillDescription() error {
	for role, files := range updater.AllowedUserRoles(p.cfg.AppName) {
		p.desc.Roles[role] = append([]string(nil), files...)
	}

	maps.Copy(p.desc.Executables, updater.ExecutablesByUserRoles(p.cfg.AppName))

	for _, fileName := range updater.FilesWithChecksum(p.cfg.AppName) {
		sourcePath := p.sourcePath(fileName)

		if _, err := os.Stat(sourcePath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", sourcePath, os.ErrNotExist)
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", sourcePath, err)
		}

		checksum, err := updater.GetFileChecksum(sourcePath)
		if err != nil {
			return err
		}

		p.desc.Files[fileName] = base64.StdEncoding.EncodeToString(checksum)
	}

	return nil
}

// sourcePath returns where a published file is taken from. The packaged
// application lives in the dist folder; everything else sits next to the
// publisher in the working directory.
func (p *publisher) sourcePath(fileName string) string {
	if fileName == common.ExecutableName(p.cfg.AppName) {
		return filepath.Join(p.cfg.DistFolder, fileName)
	}

	return fileName
}

// saveDescription writes the manifest to the standard VersionFilename.
func (p *publisher) saveDescription() error {
	contents, err := yaml.Marshal(p.desc)
	if err != nil {
		return err
	}

	return os.WriteFile(updater.VersionFilename, contents, updater.DefaultFileMode)
}

// printNextSteps logs human-readable guidance for next actions with the created files.
func (p *publisher) printNextSteps(ctx context.Context) {
	files := make([]string, 0, len(p.desc.Files)+1)
	for fileName := range p.desc.Files {
		files = append(files, p.sourcePath(fileName))
	}

	files = append(files, updater.VersionFilename)
	sort.Strings(files)

	var builder strings.Builder

	builder.WriteString("You should upload the following files to the folder ")
	builder.WriteString(p.cfg.ServerUpdateFolder)
	builder.WriteString(":\n")

	for i, name := range files {
		if i == 0 {
			builder.WriteString(name)
		} else {
			builder.WriteString(",\n")
			builder.WriteString(name)
		}
	}

	for role, fileList := range p.desc.Roles {
		builder.WriteString("\n\nFor a workstation with the \"")
		builder.WriteString(role)
		builder.WriteString("\" role, copy the following files to the local computer:\n")

		for i, name := range fileList {
			if i == 0 {
				builder.WriteString(name)
			} else {
				builder.WriteString(",\n")
				builder.WriteString(name)
			}
		}

		builder.WriteString("\nAt system startup, set the command to run: watermark-updater ")
		builder.WriteString(role)
	}

	logger.Info(ctx, builder.String())
}

// ensureFolderReachable verifies the update folder host answers before a
// manifest pointing at it is generated.
func (p *publisher) ensureFolderReachable(ctx context.Context) error {
	client, err := common.NewClient(p.cfg.ServerUpdateFolder, common.WithCallTimeout(p.cfg.Timeout))
	if err != nil {
		return err
	}

	if err = client.Ping(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Verified connection to the update folder", "url", p.cfg.ServerUpdateFolder)

	return nil
}
