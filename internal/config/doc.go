// Package config defines build and distribution settings used by the
// watermark binaries and provides helpers to load, validate and save them
// in YAML format.
//
// Defaults reproduce the stock build (requirements.txt, src/main.py, a
// windowed single-file ImageWatermarkTool in dist/), so the builder works
// in an unconfigured workspace.
package config
