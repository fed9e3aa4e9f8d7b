package tools

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Entry type constants for ListFiles results.
const (
	entryTypeFile      = "file"
	entryTypeDirectory = "directory"
)

// ReadFileInput defines input for the readFile tool.
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"the file path to read (absolute or relative to the project root)"`
}

// ListFilesInput defines input for the listFiles tool.
type ListFilesInput struct {
	Path string `json:"path" jsonschema:"the directory path to list"`
}

// FileInfoInput defines input for the getFileInfo tool.
type FileInfoInput struct {
	Path string `json:"path" jsonschema:"the file path to get info for"`
}

// ReadFile returns the complete content of a text file. Open + stat +
// LimitReader in one pass: the size check guards memory and the limit
// reader guards against the file growing between stat and read.
func (k *Kit) ReadFile(input ReadFileInput) Result {
	k.logger.Debug("ReadFile called", "path", input.Path)

	if verdict := k.validator.ValidateFilePath(input.Path); !verdict.Allowed {
		return securityResult(verdict)
	}
	safePath, err := k.validator.Resolver().Resolve(input.Path)
	if err != nil {
		return internalResult(err)
	}

	file, err := os.Open(safePath) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return notFoundResult("file")
		}
		return ioResult("open file", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return ioResult("stat file", err)
	}
	if info.IsDir() {
		return validationResult("path is a directory, not a file")
	}
	if info.Size() > k.maxFileSize {
		return validationResult(fmt.Sprintf("file size %d exceeds maximum allowed size %d bytes", info.Size(), k.maxFileSize))
	}

	content, err := io.ReadAll(io.LimitReader(file, k.maxFileSize))
	if err != nil {
		return ioResult("read file", err)
	}

	return successResult("File read", map[string]any{
		"path":    safePath,
		"content": string(content),
		"size":    len(content),
	})
}

// ListFiles lists the entries of a directory.
func (k *Kit) ListFiles(input ListFilesInput) Result {
	k.logger.Debug("ListFiles called", "path", input.Path)

	if verdict := k.validator.ValidateDirPath(input.Path, true); !verdict.Allowed {
		return securityResult(verdict)
	}
	safePath, err := k.validator.Resolver().Resolve(input.Path)
	if err != nil {
		return internalResult(err)
	}

	entries, err := os.ReadDir(safePath)
	if err != nil {
		return ioResult("read directory", err)
	}

	listing := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		entryType := entryTypeFile
		if entry.IsDir() {
			entryType = entryTypeDirectory
		}
		item := map[string]any{
			"name": entry.Name(),
			"type": entryType,
		}
		if info, err := entry.Info(); err == nil && !entry.IsDir() {
			item["size"] = info.Size()
		}
		listing = append(listing, item)
	}

	return successResult(fmt.Sprintf("Listed %d entries", len(listing)), map[string]any{
		"path":    safePath,
		"entries": listing,
		"count":   len(listing),
	})
}

// FileInfo returns metadata about a single file or directory.
func (k *Kit) FileInfo(input FileInfoInput) Result {
	k.logger.Debug("FileInfo called", "path", input.Path)

	if verdict := k.validator.ValidateFilePath(input.Path); !verdict.Allowed {
		return securityResult(verdict)
	}
	safePath, err := k.validator.Resolver().Resolve(input.Path)
	if err != nil {
		return internalResult(err)
	}

	info, err := os.Stat(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return notFoundResult("file")
		}
		return ioResult("stat file", err)
	}

	data := map[string]any{
		"path":     safePath,
		"name":     info.Name(),
		"size":     info.Size(),
		"is_dir":   info.IsDir(),
		"mode":     info.Mode().String(),
		"modified": info.ModTime().Format(time.RFC3339),
	}
	if !info.IsDir() {
		if lang := k.analyzer.DetectLanguage(safePath); lang != "" {
			data["language"] = lang
		}
	}
	return successResult("File info", data)
}
