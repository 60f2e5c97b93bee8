// Command validate checks the task set JSON files in a directory. It
// verifies:
//   - JSON structure and required fields (title, tasks)
//   - No empty or duplicate task texts
//   - A sensible task count (enough to cover a game without immediate
//     pool exhaustion)
//
// Usage: validate [dir]   (default "tasksets")
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// minRecommendedTasks is flagged as a warning, not an error: a short set
// still plays, the pool just falls back to redraws sooner.
const minRecommendedTasks = 10

// TaskSetFile mirrors the task set JSON schema.
type TaskSetFile struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tasks       []string `json:"tasks"`
}

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func main() {
	dir := "tasksets"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no task set files found in %s\n", dir)
		os.Exit(1)
	}

	failed := 0
	for _, file := range files {
		result := validateTaskSet(file)
		printResult(result)
		if !result.Valid {
			failed++
		}
	}

	fmt.Printf("\n%d files checked, %d invalid\n", len(files), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// validateTaskSet loads and validates a single task set JSON file.
func validateTaskSet(filePath string) ValidationResult {
	result := ValidationResult{File: filepath.Base(filePath), Valid: true}

	fail := func(format string, args ...any) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...any) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fail("failed to read file: %v", err)
		return result
	}

	var ts TaskSetFile
	if err := json.Unmarshal(data, &ts); err != nil {
		fail("invalid JSON: %v", err)
		return result
	}

	if ts.Title == "" {
		fail("missing title")
	}
	if len(ts.Tasks) == 0 {
		fail("no tasks")
		return result
	}

	seen := make(map[string]int)
	for i, task := range ts.Tasks {
		text := strings.TrimSpace(task)
		if text == "" {
			fail("task %d is empty", i+1)
			continue
		}
		if prev, dup := seen[strings.ToLower(text)]; dup {
			fail("task %d duplicates task %d: %q", i+1, prev, text)
			continue
		}
		seen[strings.ToLower(text)] = i + 1
	}

	// Warnings are advice for sets that already pass; an invalid file
	// reports its errors alone.
	if result.Valid {
		if len(ts.Tasks) < minRecommendedTasks {
			warn("only %d tasks, %d or more recommended", len(ts.Tasks), minRecommendedTasks)
		}
		if ts.ID != "" && ts.ID != strings.TrimSuffix(result.File, ".json") {
			warn("id %q does not match filename", ts.ID)
		}
	}

	return result
}

func printResult(result ValidationResult) {
	status := "OK"
	if !result.Valid {
		status = "FAIL"
	}
	fmt.Printf("%-30s %s\n", result.File, status)
	for _, e := range result.Errors {
		fmt.Printf("    error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("    warning: %s\n", w)
	}
}
