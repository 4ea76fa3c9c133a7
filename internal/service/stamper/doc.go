// Package stamper re-creates the application's batch watermarking for
// headless use. It walks the given files and folders, draws the text into
// the bottom-right corner of every supported image and writes the results
// into the output folder, falling back to PNG when the source format
// cannot be encoded.
package stamper
