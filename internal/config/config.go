package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds build and distribution parameters shared by the watermark binaries.
type Config struct {
	// AppName is the output executable name produced by the packager.
	AppName string `yaml:"app_name"`
	// EntryPoint is the application source file handed to the packager.
	EntryPoint string `yaml:"entry_point"`
	// RequirementsFile is the dependency manifest installed before packaging.
	RequirementsFile string `yaml:"requirements_file"`
	// DistFolder is the directory where the packager writes artifacts.
	DistFolder string `yaml:"dist_folder"`
	// PythonExecutable is the interpreter used to drive pip and the packager.
	PythonExecutable string `yaml:"python_executable"`
	// DockerImage is the image used for containerized builds.
	DockerImage string `yaml:"docker_image"`
	// ServerAddress is the socket the update file server listens on.
	ServerAddress string `yaml:"server_addr"`
	// ServerUpdateFolder is the URL where update artifacts are hosted.
	ServerUpdateFolder string `yaml:"update_folder"`
	// ReportFile is the path to the JSON file storing the last build report.
	ReportFile string `yaml:"report_file"`
	// Timeout is the duration for network operations and tool probes.
	Timeout time.Duration `yaml:"timeout"`
	// UpdateType is set at runtime by the updater to pick a role-specific
	// file set from the update manifest. It is not persisted to YAML.
	UpdateType string `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default filename for suite settings.
	DefaultConfigFilename = "watermark-tool-settings.yaml"

	// DefaultAppName is the executable name produced by the packager.
	DefaultAppName = "ImageWatermarkTool"

	// DefaultEntryPoint is the application source file handed to the packager.
	DefaultEntryPoint = "src/main.py"

	// DefaultRequirementsFilename is the dependency manifest installed before packaging.
	DefaultRequirementsFilename = "requirements.txt"

	// DefaultDistFolder is where the packager writes its artifacts.
	DefaultDistFolder = "dist"

	// DefaultPythonExecutable is the interpreter resolved from the search path.
	DefaultPythonExecutable = "python"

	// DefaultDockerImage bundles Wine and PyInstaller for Windows builds from any host.
	DefaultDockerImage = "cdrx/pyinstaller-windows:python3"

	// DefaultReportFilename is the default filename for the last build report JSON.
	DefaultReportFilename = "watermark-tool-build-report.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppNameRequired is returned when the application name is missing.
	errAppNameRequired = errors.New("application name must be provided")
	// errAppNameIsNotAName is returned when the application name contains path separators.
	errAppNameIsNotAName = errors.New("application name must be a bare file name")
	// errEntryPointRequired is returned when the entry point is missing.
	errEntryPointRequired = errors.New("entry point must be provided")
)

// Default returns settings reproducing the stock build: requirements.txt,
// src/main.py, a windowed single-file ImageWatermarkTool in dist/.
func Default() *Config {
	return &Config{
		AppName:          DefaultAppName,
		EntryPoint:       DefaultEntryPoint,
		RequirementsFile: DefaultRequirementsFilename,
		DistFolder:       DefaultDistFolder,
		PythonExecutable: DefaultPythonExecutable,
		DockerImage:      DefaultDockerImage,
		ReportFile:       DefaultReportFilename,
		Timeout:          DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the settings
// file does not exist. The builder and the doctor work out of the box in a
// workspace that was never configured, exactly like the original build script.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	if _, err := os.Stat(filepath.Clean(path)); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return Load(path)
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling empty optional fields with defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.AppName == "" {
		settings.AppName = DefaultAppName
	}

	// The app name becomes a file name inside the dist folder.
	if strings.ContainsAny(settings.AppName, `/\`) {
		return fmt.Errorf("%q: %w", settings.AppName, errAppNameIsNotAName)
	}

	if strings.TrimSpace(settings.AppName) == "" {
		return errAppNameRequired
	}

	if settings.EntryPoint == "" {
		settings.EntryPoint = DefaultEntryPoint
	}

	if strings.TrimSpace(settings.EntryPoint) == "" {
		return errEntryPointRequired
	}

	if settings.RequirementsFile == "" {
		settings.RequirementsFile = DefaultRequirementsFilename
	}

	if settings.DistFolder == "" {
		settings.DistFolder = DefaultDistFolder
	}

	if settings.PythonExecutable == "" {
		settings.PythonExecutable = DefaultPythonExecutable
	}

	if settings.DockerImage == "" {
		settings.DockerImage = DefaultDockerImage
	}

	if settings.ReportFile == "" {
		settings.ReportFile = DefaultReportFilename
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.ServerAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
			return fmt.Errorf("invalid server socket: %w", err)
		}
	}

	if settings.ServerUpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(settings.ServerUpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}
